package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/koru-editor/koru/internal/engine/cursor"
	"github.com/koru-editor/koru/internal/input"
	"github.com/koru-editor/koru/internal/script"
)

// Action is the effect of a key binding.
type Action func(ctx context.Context, s *Session) error

// Match is the result of looking up a pending key sequence.
type Match int

const (
	// NoMatch means no binding starts with the sequence.
	NoMatch Match = iota
	// Prefix means longer bindings start with the sequence.
	Prefix
	// Exact means the sequence is bound.
	Exact
)

// Keymap maps key sequences to actions.
type Keymap struct {
	bindings map[string]Action
}

// NewKeymap returns an empty keymap.
func NewKeymap() *Keymap {
	return &Keymap{bindings: make(map[string]Action)}
}

// Bind binds keys to a, replacing any earlier binding.
func (k *Keymap) Bind(keys []input.KeyPress, a Action) error {
	if len(keys) == 0 {
		return input.ErrEmptySpec
	}
	if len(keys) > input.KeyBufferSize {
		return fmt.Errorf("%w: %s", ErrSequenceTooLong, input.SequenceString(keys))
	}
	k.bindings[input.SequenceString(keys)] = a
	return nil
}

// BindString binds a sequence written in Emacs notation, such as "C-x C-s".
func (k *Keymap) BindString(spec string, a Action) error {
	keys, err := input.ParseSequence(spec)
	if err != nil {
		return err
	}
	return k.Bind(keys, a)
}

// Lookup resolves a pending sequence.
func (k *Keymap) Lookup(keys []input.KeyPress) (Action, Match) {
	seq := input.SequenceString(keys)
	if a, ok := k.bindings[seq]; ok {
		return a, Exact
	}
	for bound := range k.bindings {
		if strings.HasPrefix(bound, seq+" ") {
			return nil, Prefix
		}
	}
	return nil, NoMatch
}

// callableAction runs a script procedure as a key binding. The procedure
// receives the key sequence.
func callableAction(keys string, fn script.Callable) Action {
	return func(ctx context.Context, _ *Session) error {
		_, err := fn.Call(ctx, keys)
		return err
	}
}

// do adapts a session method to an Action.
func do(method func(*Session, context.Context) error) Action {
	return func(ctx context.Context, s *Session) error { return method(s, ctx) }
}

func insertText(text string) Action {
	return func(ctx context.Context, s *Session) error { return s.insert(ctx, text) }
}

func move(d cursor.Direction) Action {
	return func(ctx context.Context, s *Session) error { return s.move(ctx, d) }
}

func markAll(f func(cursor.Cursor) cursor.Cursor) Action {
	return func(ctx context.Context, s *Session) error { return s.mapCursors(ctx, f) }
}

// bindAll binds every sequence in bindings. The tables are fixed at build
// time, so a bad sequence is a programming error.
func bindAll(k *Keymap, bindings map[string]Action) {
	for spec, a := range bindings {
		if err := k.BindString(spec, a); err != nil {
			panic(fmt.Sprintf("default binding %q: %v", spec, err))
		}
	}
}

// GlobalKeymap returns the bindings shared by every major mode: movement,
// marks, saving, the command bar and quitting. Editing keys belong to the
// text-edit mode.
func GlobalKeymap() *Keymap {
	k := NewKeymap()
	bindAll(k, map[string]Action{
		"left":      move(cursor.LeftWrap),
		"right":     move(cursor.RightWrap),
		"up":        move(cursor.Up),
		"down":      move(cursor.Down),
		"home":      move(cursor.LineStart),
		"end":       move(cursor.LineEnd),
		"C-a":       move(cursor.LineStart),
		"C-e":       move(cursor.LineEnd),
		"C-space":   markAll(cursor.Cursor.PlacePointMark),
		"C-x space": markAll(cursor.Cursor.PlaceBoxMark),
		"C-x l":     markAll(cursor.Cursor.PlaceLineMark),
		"C-x h":     markAll(cursor.Cursor.PlaceFileMark),
		"C-g":       markAll(cursor.Cursor.RemoveMark),
		"C-x C-x":   markAll(cursor.Cursor.FlipMark),
		"C-x C-s":   do((*Session).save),
		"M-x":       do((*Session).startCommand),
		"C-q":       do((*Session).quit),
	})
	return k
}
