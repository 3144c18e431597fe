package session

import (
	"fmt"

	"github.com/koru-editor/koru/internal/engine/buffer"
	"github.com/koru-editor/koru/internal/engine/cursor"
	"github.com/koru-editor/koru/internal/script"
)

// host exposes the session to Lua scripts. Scripts run on the session's
// goroutine, inside Run.
type host struct {
	s *Session
}

func (h host) Insert(text string) error { return h.s.insert(h.s.ctx, text) }
func (h host) DeleteBack() error { return h.s.deleteBack(h.s.ctx) }
func (h host) DeleteForward() error { return h.s.deleteForward(h.s.ctx) }
func (h host) Undo() error { return h.s.undo(h.s.ctx) }
func (h host) Redo() error { return h.s.redo(h.s.ctx) }
func (h host) Replace(text string) error { return h.s.replace(h.s.ctx, text) }
func (h host) PlaceMark(kind string) error { return h.s.placeMark(h.s.ctx, kind) }
func (h host) DeleteRegion() error { return h.s.deleteRegion(h.s.ctx) }
func (h host) RemoveMark() error {
	return h.s.mapCursors(h.s.ctx, cursor.Cursor.RemoveMark)
}

func (h host) AddCursor(line, column int) error { return h.s.addCursor(h.s.ctx, line, column) }
func (h host) RemoveCursor(index int) error { return h.s.removeCursor(h.s.ctx, index) }
func (h host) ChangeMainCursor(index int) error { return h.s.changeMainCursor(h.s.ctx, index) }
func (h host) CursorCount() int { return len(h.s.focused(h.s.ctx).cursors) }

func (h host) CursorPosition(index int) (int, int, error) {
	cursors := h.s.focused(h.s.ctx).cursors
	if index < 0 || index >= len(cursors) {
		return 0, 0, fmt.Errorf("%w: %d", buffer.ErrCursorIndexOutOfRange, index)
	}
	p := cursors[index].Position()
	return p.Line, p.Column, nil
}

func (h host) Open(path string) error { return h.s.openFile(h.s.ctx, path) }
func (h host) Save() error { return h.s.save(h.s.ctx) }
func (h host) Command(line string) error {
	return h.s.runCommand(h.s.ctx, line)
}

func (h host) Move(direction string) error {
	d, err := cursor.ParseDirection(direction)
	if err != nil {
		return err
	}
	return h.s.move(h.s.ctx, d)
}

func (h host) BufferName() string { return h.s.focus }

func (h host) BufferText() string {
	var text string
	_ = h.s.withFocused(h.s.ctx, func(_ *openBuffer, b *buffer.TextBuffer) error {
		text = b.Text()
		return nil
	})
	return text
}

func (h host) Cursor() (int, int) {
	p := h.s.MainCursor().Position()
	return p.Line, p.Column
}

func (h host) Message(text string) { h.s.message(h.s.ctx, text) }
func (h host) Warn(text string) { h.s.warn(h.s.ctx, text) }
func (h host) SessionID() string { return h.s.id.String() }

func (h host) Bind(keys string, fn script.Callable) error {
	return h.s.keymap.BindString(keys, callableAction(keys, fn))
}

func (h host) AddHook(hook, name string, fn script.Callable) error {
	return h.s.hooks.Add(hook, name, fn)
}

func (h host) RemoveHook(hook, name string) bool {
	return h.s.hooks.Remove(hook, name)
}

func (h host) MajorMode() string { return h.s.focused(h.s.ctx).major.name }
func (h host) SetMajorMode(name string) error { return h.s.setMajorMode(h.s.ctx, name) }

func (h host) ModeBind(mode, keys string, fn script.Callable) error {
	k, err := h.s.modeKeymap(mode)
	if err != nil {
		return err
	}
	return k.BindString(keys, callableAction(keys, fn))
}

func (h host) ModeCommand(mode, name string, fn script.Callable) error {
	m, err := h.s.majorMode(mode)
	if err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: command name", ErrMissingArgument)
	}
	m.registerCommand(name, modeCommand(fn))
	return nil
}

func (h host) ModeAlias(mode, name, alias string) error {
	m, err := h.s.majorMode(mode)
	if err != nil {
		return err
	}
	return m.RegisterAlias(name, alias)
}

func (h host) DefineMinorMode(name string) error { return h.s.defineMinorMode(name) }
func (h host) RemoveMinorMode(name string) bool { return h.s.removeMinorMode(name) }
func (h host) EnableMinorMode(name string) error { return h.s.enableMinorMode(h.s.ctx, name) }
func (h host) DisableMinorMode(name string) bool { return h.s.disableMinorMode(h.s.ctx, name) }
func (h host) MinorModes() []string { return h.s.enabledMinorModes(h.s.ctx) }
