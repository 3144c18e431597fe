package session

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/koru-editor/koru/internal/engine/cursor"
	"github.com/koru-editor/koru/internal/input"
	"github.com/koru-editor/koru/internal/script"
	"github.com/koru-editor/koru/internal/styled"
)

// Names of the built-in major modes.
const (
	TextEditMode = "text-edit"
	TextViewMode = "text-view"
)

// DrawFunc renders a buffer's text and cursors for display clients.
type DrawFunc func(text string, cursors []cursor.Cursor) styled.File

// MajorMode decides how a buffer behaves: the keys bound for it, the
// commands it adds to the command bar and how it is drawn. Every buffer has
// exactly one.
type MajorMode struct {
	name   string
	keymap *Keymap
	// readOnly modes refuse edits and do not self-insert printable keys.
	readOnly bool
	draw     DrawFunc

	commands map[string]command
	aliases  map[string]string
}

// NewMajorMode creates a mode with an empty keymap and no commands. A nil
// draw shows the text with its cursors.
func NewMajorMode(name string, readOnly bool, draw DrawFunc) *MajorMode {
	if draw == nil {
		draw = drawPlain
	}
	return &MajorMode{
		name:     name,
		keymap:   NewKeymap(),
		readOnly: readOnly,
		draw:     draw,
		commands: make(map[string]command),
		aliases:  make(map[string]string),
	}
}

// Name returns the mode's name.
func (m *MajorMode) Name() string { return m.name }

// Keymap returns the mode's bindings.
func (m *MajorMode) Keymap() *Keymap { return m.keymap }

// ReadOnly reports whether buffers in this mode refuse edits.
func (m *MajorMode) ReadOnly() bool { return m.readOnly }

// registerCommand adds a command-bar command, replacing one of the same name.
func (m *MajorMode) registerCommand(name string, c command) {
	m.commands[name] = c
}

// RegisterAlias makes alias run the command name.
func (m *MajorMode) RegisterAlias(name, alias string) error {
	if _, ok := m.commands[name]; !ok {
		return fmt.Errorf("%w: %s in %s", ErrUnknownCommand, name, m.name)
	}
	m.aliases[alias] = name
	return nil
}

// RemoveAlias forgets alias.
func (m *MajorMode) RemoveAlias(alias string) {
	delete(m.aliases, alias)
}

// command resolves a command name or alias.
func (m *MajorMode) command(name string) (command, bool) {
	if target, ok := m.aliases[name]; ok {
		name = target
	}
	c, ok := m.commands[name]
	return c, ok
}

// CommandNames returns the mode's commands in sorted order.
func (m *MajorMode) CommandNames() []string {
	names := make([]string, 0, len(m.commands))
	for name := range m.commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func drawPlain(text string, cursors []cursor.Cursor) styled.File {
	return styled.FromText(text).PlaceCursors(cursors)
}

var viewStyle = styled.Style{Fg: styled.ColorSubtext0, Bg: styled.ColorBase}

func drawView(text string, cursors []cursor.Cursor) styled.File {
	return styled.FromText(text).WithStyle(viewStyle).PlaceCursors(cursors)
}

// markKinds maps mark names to the cursor operation placing them.
var markKinds = map[string]func(cursor.Cursor) cursor.Cursor{
	cursor.MarkPoint.String(): cursor.Cursor.PlacePointMark,
	cursor.MarkLine.String():  cursor.Cursor.PlaceLineMark,
	cursor.MarkBox.String():   cursor.Cursor.PlaceBoxMark,
	cursor.MarkFile.String():  cursor.Cursor.PlaceFileMark,
}

// newTextEditMode returns the mode of files and **scratch**.
func newTextEditMode() *MajorMode {
	m := NewMajorMode(TextEditMode, false, drawPlain)
	bindAll(m.keymap, map[string]Action{
		"enter":     insertText("\n"),
		"tab":       insertText("\t"),
		"backspace": do((*Session).deleteBack),
		"delete":    do((*Session).deleteForward),
		"C-w":       do((*Session).deleteRegion),
		"C-z":       do((*Session).undo),
		"C-y":       do((*Session).redo),
		"M-down":    do((*Session).addCursorBelow),
		"M-n":       cycleMain(1),
		"M-p":       cycleMain(-1),
		"M-k":       do((*Session).removeSecondaryCursors),
	})

	m.registerCommand("mark", func(ctx context.Context, s *Session, arg string) error {
		if arg == "" {
			arg = cursor.MarkPoint.String()
		}
		return s.placeMark(ctx, arg)
	})
	m.registerCommand("unmark", func(ctx context.Context, s *Session, _ string) error {
		return s.mapCursors(ctx, cursor.Cursor.RemoveMark)
	})
	m.registerCommand("delete-region", func(ctx context.Context, s *Session, _ string) error {
		return s.deleteRegion(ctx)
	})
	m.registerCommand("cursor-add", func(ctx context.Context, s *Session, arg string) error {
		line, column, err := twoInts(arg)
		if err != nil {
			return err
		}
		return s.addCursor(ctx, line, column)
	})
	m.registerCommand("cursor-remove", func(ctx context.Context, s *Session, arg string) error {
		i, err := oneInt(arg)
		if err != nil {
			return err
		}
		return s.removeCursor(ctx, i)
	})
	m.registerCommand("cursor-main", func(ctx context.Context, s *Session, arg string) error {
		i, err := oneInt(arg)
		if err != nil {
			return err
		}
		return s.changeMainCursor(ctx, i)
	})
	m.registerCommand("cursors", func(ctx context.Context, s *Session, _ string) error {
		s.message(ctx, s.describeCursors())
		return nil
	})
	for alias, name := range map[string]string{"dr": "delete-region", "ca": "cursor-add"} {
		if err := m.RegisterAlias(name, alias); err != nil {
			panic(err)
		}
	}
	return m
}

// newTextViewMode returns the read-only mode of the log buffers.
func newTextViewMode() *MajorMode {
	m := NewMajorMode(TextViewMode, true, drawView)
	bindAll(m.keymap, map[string]Action{
		"q":     do((*Session).leaveBuffer),
		"space": move(cursor.Down),
	})
	return m
}

// MinorMode adds bindings on top of a buffer's major mode. Any number can
// be enabled per buffer; the most recently enabled one wins.
type MinorMode struct {
	name   string
	keymap *Keymap
}

// Name returns the mode's name.
func (m *MinorMode) Name() string { return m.name }

// Keymap returns the mode's bindings.
func (m *MinorMode) Keymap() *Keymap { return m.keymap }

// MinorModes is the registry of a session's minor modes. Removed modes free
// their slot for the next definition, oldest slot first.
type MinorModes struct {
	slots []*MinorMode
	free  []int
	names map[string]int
}

// NewMinorModes returns an empty registry.
func NewMinorModes() *MinorModes {
	return &MinorModes{names: make(map[string]int)}
}

// Define registers a minor mode called name and returns its slot. Defining
// an existing name returns the existing slot.
func (r *MinorModes) Define(name string) int {
	if i, ok := r.names[name]; ok {
		return i
	}
	m := &MinorMode{name: name, keymap: NewKeymap()}
	var i int
	if len(r.free) > 0 {
		i = r.free[0]
		r.free = r.free[1:]
		r.slots[i] = m
	} else {
		i = len(r.slots)
		r.slots = append(r.slots, m)
	}
	r.names[name] = i
	return i
}

// Lookup returns the slot and mode registered as name.
func (r *MinorModes) Lookup(name string) (int, *MinorMode, bool) {
	i, ok := r.names[name]
	if !ok {
		return -1, nil, false
	}
	return i, r.slots[i], true
}

// At returns the mode in slot i, or nil for a free slot.
func (r *MinorModes) At(i int) *MinorMode {
	if i < 0 || i >= len(r.slots) {
		return nil
	}
	return r.slots[i]
}

// Remove unregisters name and returns the slot it held.
func (r *MinorModes) Remove(name string) (int, bool) {
	i, ok := r.names[name]
	if !ok {
		return -1, false
	}
	delete(r.names, name)
	r.slots[i] = nil
	r.free = append(r.free, i)
	return i, true
}

// Len returns the number of registered modes.
func (r *MinorModes) Len() int { return len(r.names) }

// majorMode resolves a major mode by name.
func (s *Session) majorMode(name string) (*MajorMode, error) {
	m, ok := s.majors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, name)
	}
	return m, nil
}

// setMajorMode switches the focused buffer to the major mode name.
func (s *Session) setMajorMode(ctx context.Context, name string) error {
	m, err := s.majorMode(name)
	if err != nil {
		return err
	}
	s.focused(ctx).major = m
	return nil
}

// defineMinorMode registers a minor mode. Major mode names are refused so
// that mode names stay unambiguous for bindings.
func (s *Session) defineMinorMode(name string) error {
	if name == "" {
		return fmt.Errorf("%w: mode name", ErrMissingArgument)
	}
	if _, ok := s.majors[name]; ok {
		return fmt.Errorf("%w: %s is a major mode", ErrModeExists, name)
	}
	s.minors.Define(name)
	return nil
}

// removeMinorMode unregisters name and disables it in every buffer.
func (s *Session) removeMinorMode(name string) bool {
	i, ok := s.minors.Remove(name)
	if !ok {
		return false
	}
	for _, ob := range s.buffers {
		ob.minors = slices.DeleteFunc(ob.minors, func(j int) bool { return j == i })
	}
	return true
}

// enableMinorMode turns name on in the focused buffer.
func (s *Session) enableMinorMode(ctx context.Context, name string) error {
	i, _, ok := s.minors.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMode, name)
	}
	ob := s.focused(ctx)
	if !slices.Contains(ob.minors, i) {
		ob.minors = append(ob.minors, i)
	}
	return nil
}

// disableMinorMode turns name off in the focused buffer.
func (s *Session) disableMinorMode(ctx context.Context, name string) bool {
	i, _, ok := s.minors.Lookup(name)
	if !ok {
		return false
	}
	ob := s.focused(ctx)
	n := len(ob.minors)
	ob.minors = slices.DeleteFunc(ob.minors, func(j int) bool { return j == i })
	return len(ob.minors) != n
}

// enabledMinorModes returns the names of the focused buffer's minor modes
// in the order they were enabled.
func (s *Session) enabledMinorModes(ctx context.Context) []string {
	ob := s.focused(ctx)
	names := make([]string, 0, len(ob.minors))
	for _, i := range ob.minors {
		if m := s.minors.At(i); m != nil {
			names = append(names, m.name)
		}
	}
	return names
}

// modeKeymap resolves the keymap of a major or minor mode by name.
func (s *Session) modeKeymap(name string) (*Keymap, error) {
	if m, ok := s.majors[name]; ok {
		return m.keymap, nil
	}
	if _, m, ok := s.minors.Lookup(name); ok {
		return m.keymap, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownMode, name)
}

// keymaps returns the keymaps consulted for ob, highest priority first:
// script bindings, minor modes from the most recently enabled, the major
// mode and the global bindings.
func (s *Session) keymaps(ob *openBuffer) []*Keymap {
	maps := make([]*Keymap, 0, len(ob.minors)+3)
	maps = append(maps, s.keymap)
	for i := len(ob.minors) - 1; i >= 0; i-- {
		if m := s.minors.At(ob.minors[i]); m != nil {
			maps = append(maps, m.keymap)
		}
	}
	return append(maps, ob.major.keymap, s.global)
}

// lookup resolves keys in the focused buffer's keymaps. The first keymap
// that binds keys or a longer sequence starting with them decides.
func (s *Session) lookup(ob *openBuffer, keys []input.KeyPress) (Action, Match) {
	for _, k := range s.keymaps(ob) {
		if a, m := k.Lookup(keys); m != NoMatch {
			return a, m
		}
	}
	return nil, NoMatch
}

// modeCommand wraps a script procedure as a command-bar command. The
// procedure receives the argument text.
func modeCommand(fn script.Callable) command {
	return func(ctx context.Context, _ *Session, arg string) error {
		_, err := fn.Call(ctx, arg)
		return err
	}
}

// describeModes summarises the focused buffer's modes for the message bar.
func (s *Session) describeModes(ctx context.Context) string {
	ob := s.focused(ctx)
	text := "major " + ob.major.name
	if minors := s.enabledMinorModes(ctx); len(minors) > 0 {
		text += ", minor " + strings.Join(minors, " ")
	}
	return text
}
