package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/koru-editor/koru/internal/engine/buffer"
	"github.com/koru-editor/koru/internal/engine/cursor"
	"github.com/koru-editor/koru/internal/engine/table"
	"github.com/koru-editor/koru/internal/script"
)

// openBuffer is a buffer as one session sees it.
type openBuffer struct {
	name   string
	handle buffer.Handle
	// ref is nil for the session's own buffers.
	ref     *table.Ref
	path    string
	cursors []cursor.Cursor
	major   *MajorMode
	// minors are slots in the session's minor mode registry, in the order
	// they were enabled.
	minors []int
}

func newLocalBuffer(b *buffer.TextBuffer, major *MajorMode) *openBuffer {
	return &openBuffer{
		name:    b.Name(),
		handle:  buffer.NewHandle(b),
		cursors: []cursor.Cursor{cursor.NewMain(0, 0)},
		major:   major,
	}
}

// focused returns the buffer keys act on. A file buffer closed by another
// session is dropped and focus falls back to **scratch**.
func (s *Session) focused(ctx context.Context) *openBuffer {
	ob := s.buffers[s.focus]
	if ob.ref != nil && !s.cfg.Table.Live(*ob.ref) {
		s.forget(ob)
		s.focus = ScratchBuffer
		s.warn(ctx, fmt.Sprintf("%s was closed", ob.name))
		ob = s.buffers[ScratchBuffer]
	}
	return ob
}

func (s *Session) forget(ob *openBuffer) {
	delete(s.buffers, ob.name)
	if s.cfg.Watcher != nil && ob.ref != nil {
		s.cfg.Watcher.Unwatch(ob.path, s.client.ID())
	}
}

// BufferNames returns the names of the session's buffers in sorted order.
func (s *Session) BufferNames() []string {
	names := make([]string, 0, len(s.buffers))
	for name := range s.buffers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Focus returns the name of the focused buffer.
func (s *Session) Focus() string { return s.focus }

// focusBuffer switches to name and runs the gain-focus hook.
func (s *Session) focusBuffer(ctx context.Context, name string) error {
	if _, ok := s.buffers[name]; !ok {
		return fmt.Errorf("%w: %s", table.ErrBufferNotFound, name)
	}
	if name != s.focus {
		s.previous = s.focus
	}
	s.focus = name
	if err := s.hooks.Run(ctx, script.HookGainFocus, name); err != nil {
		s.fail(ctx, err)
	}
	return nil
}

// openFile opens path in the buffer table, restores its undo history when
// the store has one for the same content, and focuses it.
func (s *Session) openFile(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("%w: path", ErrMissingArgument)
	}
	ref, err := s.cfg.Table.Open(path)
	if err != nil {
		return err
	}
	name, err := s.cfg.Table.Name(ref)
	if err != nil {
		return err
	}
	if ob, ok := s.buffers[name]; ok && ob.ref != nil && ob.ref.Handle.Same(ref.Handle) {
		return s.focusBuffer(ctx, name)
	}

	ob := &openBuffer{
		name:    name,
		handle:  ref.Handle,
		ref:     &ref,
		cursors: []cursor.Cursor{cursor.NewMain(0, 0)},
		major:   s.majors[TextEditMode],
	}
	err = ob.handle.With(ctx, func(b *buffer.TextBuffer) error {
		ob.path = b.Path()
		if s.cfg.Store == nil || b.Revision() != 0 {
			return nil
		}
		snap, ok, err := s.cfg.Store.LoadUndo(b.Path(), b.Text())
		if err != nil || !ok {
			return err
		}
		return b.RestoreUndo(snap)
	})
	if err != nil {
		s.warn(ctx, fmt.Sprintf("undo history for %s: %v", name, err))
	}
	s.buffers[name] = ob

	if s.cfg.Watcher != nil {
		if err := s.cfg.Watcher.Watch(ob.path, s.client.ID()); err != nil {
			s.warn(ctx, fmt.Sprintf("watch %s: %v", ob.path, err))
		}
	}
	if err := s.hooks.Run(ctx, script.HookFileOpen, ob.path); err != nil {
		s.fail(ctx, err)
	}
	return s.focusBuffer(ctx, name)
}

// leaveBuffer returns to the buffer focused before the current one, or to
// **scratch** when that one is gone.
func (s *Session) leaveBuffer(ctx context.Context) error {
	if _, ok := s.buffers[s.previous]; ok && s.previous != s.focus {
		return s.focusBuffer(ctx, s.previous)
	}
	return s.focusBuffer(ctx, ScratchBuffer)
}

// closeBuffer closes name, or the focused buffer when name is empty.
func (s *Session) closeBuffer(ctx context.Context, name string) error {
	if name == "" {
		name = s.focus
	}
	ob, ok := s.buffers[name]
	if !ok {
		return fmt.Errorf("%w: %s", table.ErrBufferNotFound, name)
	}
	if ob.ref == nil {
		return fmt.Errorf("%w: close %s", ErrSessionBuffer, name)
	}

	var modified bool
	if err := ob.handle.With(ctx, func(b *buffer.TextBuffer) error {
		modified = b.Modified()
		return nil
	}); err != nil {
		return err
	}
	if modified {
		return fmt.Errorf("%w: %s", ErrModified, name)
	}

	if err := s.cfg.Table.Close(*ob.ref); err != nil && !errors.Is(err, table.ErrStaleRef) {
		return err
	}
	s.forget(ob)
	if s.focus == name {
		return s.focusBuffer(ctx, ScratchBuffer)
	}
	return nil
}

// save writes the focused buffer to its file and stores its undo history.
func (s *Session) save(ctx context.Context) error {
	ob := s.focused(ctx)
	var path string
	var storeErr error
	err := ob.handle.With(ctx, func(b *buffer.TextBuffer) error {
		if err := b.Save(); err != nil {
			return err
		}
		path = b.Path()
		if s.cfg.Store != nil {
			storeErr = s.cfg.Store.SaveUndo(path, b.Text(), b.UndoSnapshot())
		}
		return nil
	})
	if err != nil {
		return err
	}
	if storeErr != nil {
		s.warn(ctx, fmt.Sprintf("store undo history for %s: %v", path, storeErr))
	}

	s.message(ctx, "Wrote "+path)
	if err := s.hooks.Run(ctx, script.HookBufferSave, ob.name); err != nil {
		s.fail(ctx, err)
	}
	return nil
}

// saveAs writes the focused buffer to path. A file buffer is renamed after
// its new file; a session buffer's text is written out and the file opened.
func (s *Session) saveAs(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("%w: path", ErrMissingArgument)
	}
	canonical, err := buffer.Canonicalize(path)
	if err != nil {
		return err
	}
	ob := s.focused(ctx)

	if ob.ref == nil {
		var text string
		if err := ob.handle.With(ctx, func(b *buffer.TextBuffer) error {
			text = b.Text()
			return nil
		}); err != nil {
			return err
		}
		if err := os.WriteFile(canonical, []byte(text), 0o644); err != nil {
			return &buffer.PathError{Op: "save", Path: canonical, Err: err}
		}
		s.message(ctx, "Wrote "+canonical)
		return s.openFile(ctx, canonical)
	}

	oldName, oldPath := ob.name, ob.path
	err = ob.handle.With(ctx, func(b *buffer.TextBuffer) error {
		return b.SaveAs(canonical)
	})
	if err != nil {
		return err
	}
	if err := s.cfg.Table.Rename(ctx, oldName, canonical); err != nil {
		s.warn(ctx, fmt.Sprintf("rename %s: %v", oldName, err))
	} else {
		delete(s.buffers, oldName)
		ob.name = canonical
		s.buffers[canonical] = ob
		s.focus = canonical
	}
	ob.path = canonical
	if s.cfg.Watcher != nil {
		s.cfg.Watcher.Unwatch(oldPath, s.client.ID())
		if err := s.cfg.Watcher.Watch(canonical, s.client.ID()); err != nil {
			s.warn(ctx, fmt.Sprintf("watch %s: %v", canonical, err))
		}
	}
	s.message(ctx, "Wrote "+canonical)
	if err := s.hooks.Run(ctx, script.HookBufferSave, ob.name); err != nil {
		s.fail(ctx, err)
	}
	return nil
}

// rename gives the focused file buffer a new name.
func (s *Session) rename(ctx context.Context, newName string) error {
	if newName == "" {
		return fmt.Errorf("%w: name", ErrMissingArgument)
	}
	ob := s.focused(ctx)
	if ob.ref == nil {
		return fmt.Errorf("%w: rename %s", ErrSessionBuffer, ob.name)
	}
	if err := s.cfg.Table.Rename(ctx, ob.name, newName); err != nil {
		return err
	}
	delete(s.buffers, ob.name)
	ob.name = newName
	s.buffers[newName] = ob
	s.focus = newName
	return nil
}

// fileChanged reloads every unmodified buffer backed by path. Buffers with
// unsaved changes keep their text and get a warning. A file that still
// holds what the buffer last wrote, such as after the session's own save,
// is left alone.
func (s *Session) fileChanged(ctx context.Context, path string) {
	for _, ob := range s.buffers {
		if ob.ref == nil || ob.path != path {
			continue
		}
		var reloaded, conflict bool
		err := ob.handle.With(ctx, func(b *buffer.TextBuffer) error {
			changed, err := b.ChangedOnDisk()
			if err != nil || !changed {
				return err
			}
			if b.Modified() {
				conflict = true
				return nil
			}
			cursors, err := b.Reload(ob.cursors)
			if err != nil {
				return err
			}
			ob.cursors = cursors
			reloaded = true
			return nil
		})
		switch {
		case err != nil:
			s.fail(ctx, err)
		case reloaded:
			s.message(ctx, "Reloaded "+path)
		case conflict:
			s.warn(ctx, fmt.Sprintf("%s changed on disk; buffer has unsaved changes", path))
		}
	}
}

// appendLog adds a timestamped line to one of the session's log buffers.
func (s *Session) appendLog(ctx context.Context, name, text string) {
	ob, ok := s.buffers[name]
	if !ok {
		return
	}
	line := s.now().Format("15:04:05") + " " + text
	err := ob.handle.With(ctx, func(b *buffer.TextBuffer) error {
		last := b.LineCount() - 1
		at := []cursor.Cursor{cursor.NewMain(last, b.LineLength(last))}
		if b.Len() > 1 {
			line = "\n" + line
		}
		_, err := b.Insert(line, 0, at)
		return err
	})
	if err != nil {
		s.logger.Warnf("append to %s: %v", name, err)
	}
}

// MainCursor returns the main cursor of the focused buffer.
func (s *Session) MainCursor() cursor.Cursor {
	ob := s.buffers[s.focus]
	i, err := cursor.MainIndex(ob.cursors)
	if err != nil {
		return ob.cursors[0]
	}
	return ob.cursors[i]
}

// CursorCount returns the number of cursors in the focused buffer.
func (s *Session) CursorCount() int {
	return len(s.buffers[s.focus].cursors)
}

// CursorPosition returns the position of cursor i in the focused buffer.
func (s *Session) CursorPosition(i int) (cursor.Position, error) {
	cursors := s.buffers[s.focus].cursors
	if i < 0 || i >= len(cursors) {
		return cursor.Position{}, buffer.ErrCursorIndexOutOfRange
	}
	return cursors[i].Position(), nil
}
