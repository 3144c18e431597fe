package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/koru-editor/koru/internal/broker"
	"github.com/koru-editor/koru/internal/engine/buffer"
	"github.com/koru-editor/koru/internal/engine/table"
	"github.com/koru-editor/koru/internal/engine/undo"
	"github.com/koru-editor/koru/internal/input"
	"github.com/koru-editor/koru/internal/logging"
	"github.com/koru-editor/koru/internal/script"
	"github.com/koru-editor/koru/internal/script/lua"
	"github.com/koru-editor/koru/internal/styled"
)

// Names of the buffers every session owns.
const (
	ScratchBuffer  = "**scratch**"
	WarningsBuffer = "**Warnings**"
	ErrorsBuffer   = "**Errors**"
)

// UndoStore persists undo histories of file buffers.
type UndoStore interface {
	SaveUndo(path, content string, snap undo.Snapshot) error
	LoadUndo(path, content string) (undo.Snapshot, bool, error)
}

// FileWatcher reports on-disk changes of open files to sessions.
type FileWatcher interface {
	Watch(path string, session broker.ClientID) error
	Unwatch(path string, session broker.ClientID)
}

// Config carries the process-wide services a session uses.
type Config struct {
	// Table holds the file buffers shared by all sessions. Required.
	Table *table.Table
	// Store persists undo history. Optional.
	Store UndoStore
	// Watcher reports file changes. Optional.
	Watcher FileWatcher
	// BufferOptions configure the session's own buffers.
	BufferOptions []buffer.Option
	// Palette maps palette names to hex colours. Nil sends the default palette.
	Palette map[string]string
	// TabWidth is sent to display clients.
	TabWidth int
	// InitScript is a Lua file run when the session starts.
	InitScript string
	Logger     *logging.Logger
	// Clock timestamps log buffer entries.
	Clock func() time.Time
}

// Session is one editing session.
type Session struct {
	id     uuid.UUID
	client *broker.Client
	cfg    Config
	logger *logging.Logger
	now    func() time.Time

	displays []broker.ClientID
	buffers  map[string]*openBuffer
	focus    string
	previous string

	keys input.KeyBuffer
	// keymap holds script bindings, which take precedence over every mode.
	keymap *Keymap
	global *Keymap
	majors map[string]*MajorMode
	minors *MinorModes

	hooks   *script.Hooks
	lua     *lua.Runtime
	command *string

	// ctx is the context of Run, used by script callbacks.
	ctx  context.Context
	done bool
}

// New creates a session that talks through client and draws to display.
func New(client *broker.Client, display broker.ClientID, cfg Config) *Session {
	id := uuid.New()
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	s := &Session{
		id:       id,
		client:   client,
		cfg:      cfg,
		logger:   logger.WithField("session", id.String()),
		now:      now,
		displays: []broker.ClientID{display},
		buffers:  make(map[string]*openBuffer),
		keymap:   NewKeymap(),
		global:   GlobalKeymap(),
		majors:   make(map[string]*MajorMode),
		minors:   NewMinorModes(),
		hooks:    script.NewHooks(),
		ctx:      context.Background(),
	}
	for _, m := range []*MajorMode{newTextEditMode(), newTextViewMode()} {
		s.majors[m.name] = m
	}
	s.buffers[ScratchBuffer] = newLocalBuffer(buffer.New(ScratchBuffer, "", cfg.BufferOptions...), s.majors[TextEditMode])
	for _, name := range []string{WarningsBuffer, ErrorsBuffer} {
		s.buffers[name] = newLocalBuffer(buffer.New(name, "", cfg.BufferOptions...), s.majors[TextViewMode])
	}
	s.focus = ScratchBuffer
	s.lua = lua.New(host{s}, lua.WithLogger(s.logger.WithComponent("lua")))
	return s
}

// Spawner returns a broker.Spawner that runs a new Session for each
// ConnectToSession request.
func Spawner(cfg Config) broker.Spawner {
	return func(ctx context.Context, client *broker.Client, display broker.ClientID) error {
		return New(client, display, cfg).Run(ctx)
	}
}

// ID returns the session's correlation id.
func (s *Session) ID() uuid.UUID { return s.id }

// Keymap returns the script bindings, which override every mode.
func (s *Session) Keymap() *Keymap { return s.keymap }

// MajorMode returns the major mode registered as name.
func (s *Session) MajorMode(name string) (*MajorMode, bool) {
	m, ok := s.majors[name]
	return m, ok
}

// MinorModes returns the session's minor mode registry.
func (s *Session) MinorModes() *MinorModes { return s.minors }

// Hooks returns the session's hook registry.
func (s *Session) Hooks() *script.Hooks { return s.hooks }

// Run processes messages until the session quits, its last display client
// goes away, its inbox closes or ctx is canceled.
func (s *Session) Run(ctx context.Context) error {
	s.ctx = ctx
	defer s.stop()

	s.logger.Infof("session started, client %d, display %d", s.client.ID(), s.displays[0])
	s.sendTheme(ctx, s.displays[0])
	if s.cfg.InitScript != "" {
		if err := s.lua.DoFile(ctx, s.cfg.InitScript); err != nil {
			s.fail(ctx, fmt.Errorf("init script: %w", err))
		}
	}
	s.draw(ctx)

	for !s.done {
		m, err := s.client.Recv(ctx)
		if err != nil {
			if errors.Is(err, broker.ErrClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		s.handle(ctx, m)
	}
	return nil
}

func (s *Session) stop() {
	if s.cfg.Watcher != nil {
		for _, ob := range s.buffers {
			if ob.ref != nil {
				s.cfg.Watcher.Unwatch(ob.path, s.client.ID())
			}
		}
	}
	s.lua.Close()
	s.logger.Infof("session ended")
}

func (s *Session) handle(ctx context.Context, m broker.Message) {
	switch k := m.Kind.(type) {
	case broker.KeyEvent:
		s.attach(ctx, m.Source)
		s.handleKey(ctx, k.Key)
	case broker.Command:
		s.attach(ctx, m.Source)
		if err := s.runCommand(ctx, k.Line); err != nil {
			s.fail(ctx, err)
		}
	case broker.FlushKeyBuffer:
		s.keys.Clear()
		s.message(ctx, "")
	case broker.FileChanged:
		s.fileChanged(ctx, k.Path)
	case broker.Quit:
		_ = s.quit(ctx)
	case broker.Undeliverable:
		s.detach(k.Destination)
		return
	default:
		s.logger.Debugf("ignoring %s", m)
		return
	}
	if !s.done {
		s.draw(ctx)
	}
}

// attach makes id a display client. A frontend joins a running session by
// sending it a key event or command.
func (s *Session) attach(ctx context.Context, id broker.ClientID) {
	if id == s.client.ID() || slices.Contains(s.displays, id) {
		return
	}
	s.displays = append(s.displays, id)
	s.logger.Infof("display %d attached", id)
	s.sendTheme(ctx, id)
}

// detach forgets a display client that can no longer be reached. The
// session ends with its last display.
func (s *Session) detach(id broker.ClientID) {
	i := slices.Index(s.displays, id)
	if i < 0 {
		return
	}
	s.displays = slices.Delete(s.displays, i, i+1)
	s.logger.Infof("display %d detached", id)
	if len(s.displays) == 0 {
		s.done = true
	}
}

// notify sends kind to every display client. A failed send is logged; it
// never ends the session.
func (s *Session) notify(ctx context.Context, kind broker.General) {
	for _, d := range s.displays {
		if err := s.client.Send(ctx, kind, d); err != nil {
			s.logger.Warnf("send %T to %d: %v", kind, d, err)
		}
	}
}

func (s *Session) sendTheme(ctx context.Context, dest broker.ClientID) {
	palette := s.cfg.Palette
	if palette == nil {
		palette = styled.DefaultPalette
	}
	defs, err := styled.ParsePalette(palette)
	if err != nil {
		s.fail(ctx, fmt.Errorf("theme: %w", err))
	}
	for _, def := range defs {
		if err := s.client.Send(ctx, broker.SetColorDef{Def: def}, dest); err != nil {
			s.logger.Warnf("send theme to %d: %v", dest, err)
			return
		}
	}
	attrs := map[string]string{"tab-width": strconv.Itoa(max(s.cfg.TabWidth, 1))}
	if err := s.client.Send(ctx, broker.SetUiAttrs{Attrs: attrs}, dest); err != nil {
		s.logger.Warnf("send ui attributes to %d: %v", dest, err)
	}
}

// draw sends the focused buffer with its cursors to every display client.
func (s *Session) draw(ctx context.Context) {
	ob := s.focused(ctx)
	var file styled.File
	err := ob.handle.With(ctx, func(b *buffer.TextBuffer) error {
		ob.cursors = b.ClampCursors(ob.cursors)
		file = ob.major.draw(b.Text(), ob.cursors)
		return nil
	})
	if err != nil {
		s.logger.Warnf("draw %s: %v", ob.name, err)
		return
	}
	s.notify(ctx, broker.Draw{Buffer: ob.name, Mode: ob.major.name, File: file})
}

// message replaces the message bar text of every display client.
func (s *Session) message(ctx context.Context, text string) {
	s.notify(ctx, broker.UpdateMessageBar{Text: text})
}

// fail reports err on the message bar and in the **Errors** buffer. Empty
// undo or redo history is only shown on the message bar.
func (s *Session) fail(ctx context.Context, err error) {
	if errors.Is(err, undo.ErrNothingToUndo) || errors.Is(err, undo.ErrNothingToRedo) {
		s.message(ctx, err.Error())
		return
	}
	s.logger.Errorf("%v", err)
	s.appendLog(ctx, ErrorsBuffer, err.Error())
	s.message(ctx, err.Error())
}

// warn reports text on the message bar and in the **Warnings** buffer.
func (s *Session) warn(ctx context.Context, text string) {
	s.logger.Warnf("%s", text)
	s.appendLog(ctx, WarningsBuffer, text)
	s.message(ctx, text)
}

func (s *Session) handleKey(ctx context.Context, k input.KeyPress) {
	if err := s.hooks.Run(ctx, script.HookKey, k.String()); err != nil {
		s.fail(ctx, err)
	}
	if s.command != nil {
		s.commandKey(ctx, k)
		return
	}

	if !s.keys.Push(k) {
		s.keys.Clear()
		s.keys.Push(k)
	}
	keys := s.keys.Keys()
	ob := s.focused(ctx)
	action, match := s.lookup(ob, keys)

	switch match {
	case Exact:
		s.keys.Clear()
		if len(keys) > 1 {
			s.message(ctx, "")
		}
		if err := action(ctx, s); err != nil {
			s.fail(ctx, err)
		}
	case Prefix:
		if s.keys.Full() {
			s.keys.Clear()
			s.message(ctx, input.SequenceString(keys)+" is undefined")
			return
		}
		s.message(ctx, input.SequenceString(keys)+" -")
	case NoMatch:
		s.keys.Clear()
		if len(keys) == 1 && k.IsPrintable() && !ob.major.readOnly {
			if err := s.insert(ctx, string(k.Rune)); err != nil {
				s.fail(ctx, err)
			}
			return
		}
		s.message(ctx, input.SequenceString(keys)+" is undefined")
	}
}

// quit tells every display client that the session is over and stops Run.
func (s *Session) quit(ctx context.Context) error {
	s.notify(ctx, broker.Quit{})
	s.done = true
	return nil
}
