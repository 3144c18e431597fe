package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/koru-editor/koru/internal/engine/buffer"
	"github.com/koru-editor/koru/internal/engine/cursor"
)

// withFocused runs fn holding the focused buffer, with its cursors pulled
// back inside text that another session may have shortened.
func (s *Session) withFocused(ctx context.Context, fn func(ob *openBuffer, b *buffer.TextBuffer) error) error {
	ob := s.focused(ctx)
	return ob.handle.With(ctx, func(b *buffer.TextBuffer) error {
		ob.cursors = b.ClampCursors(ob.cursors)
		return fn(ob, b)
	})
}

// withWritable is withFocused for operations that change the text. It
// refuses buffers whose major mode is read-only.
func (s *Session) withWritable(ctx context.Context, fn func(ob *openBuffer, b *buffer.TextBuffer) error) error {
	if ob := s.focused(ctx); ob.major.readOnly {
		return fmt.Errorf("%w: %s", ErrReadOnly, ob.name)
	}
	return s.withFocused(ctx, fn)
}

type cursorOp func(b *buffer.TextBuffer, index int, cursors []cursor.Cursor) ([]cursor.Cursor, error)

// eachCursor applies op at every cursor of the focused buffer. With more
// than one cursor the edits form one undo step. Cursors are visited last
// to first, so an edit never shifts a cursor that is still to be visited.
func (s *Session) eachCursor(ctx context.Context, op cursorOp) error {
	return s.withWritable(ctx, func(ob *openBuffer, b *buffer.TextBuffer) error {
		cursors := ob.cursors
		if len(cursors) == 1 {
			out, err := op(b, 0, cursors)
			ob.cursors = out
			return err
		}

		b.StartTransaction()
		var opErr error
		for i := len(cursors) - 1; i >= 0; i-- {
			if i >= len(cursors) {
				continue
			}
			out, err := op(b, i, cursors)
			if err != nil {
				opErr = err
				break
			}
			cursors = out
		}
		ob.cursors = cursors
		if err := b.EndTransaction(); err != nil {
			return err
		}
		return opErr
	})
}

func (s *Session) insert(ctx context.Context, text string) error {
	return s.eachCursor(ctx, func(b *buffer.TextBuffer, i int, c []cursor.Cursor) ([]cursor.Cursor, error) {
		return b.Insert(text, i, c)
	})
}

func (s *Session) deleteBack(ctx context.Context) error {
	return s.eachCursor(ctx, (*buffer.TextBuffer).DeleteBack)
}

func (s *Session) deleteForward(ctx context.Context) error {
	return s.eachCursor(ctx, (*buffer.TextBuffer).DeleteForward)
}

// deleteRegion deletes the region of every cursor that has a mark.
func (s *Session) deleteRegion(ctx context.Context) error {
	if !hasMark(s.focused(ctx).cursors) {
		return buffer.ErrNoMark
	}
	return s.eachCursor(ctx, func(b *buffer.TextBuffer, i int, c []cursor.Cursor) ([]cursor.Cursor, error) {
		if _, ok := c[i].Mark(); !ok {
			return c, nil
		}
		return b.DeleteRegion(i, c)
	})
}

// replace replaces the region of every marked cursor with text, or
// overwrites from every unmarked one.
func (s *Session) replace(ctx context.Context, text string) error {
	return s.eachCursor(ctx, func(b *buffer.TextBuffer, i int, c []cursor.Cursor) ([]cursor.Cursor, error) {
		return b.Replace(text, i, c)
	})
}

func hasMark(cursors []cursor.Cursor) bool {
	for _, c := range cursors {
		if _, ok := c.Mark(); ok {
			return true
		}
	}
	return false
}

func (s *Session) move(ctx context.Context, d cursor.Direction) error {
	return s.withFocused(ctx, func(ob *openBuffer, b *buffer.TextBuffer) error {
		ob.cursors = b.MoveCursors(ob.cursors, d)
		return nil
	})
}

// mapCursors replaces every cursor c with f(c).
func (s *Session) mapCursors(ctx context.Context, f func(cursor.Cursor) cursor.Cursor) error {
	return s.withFocused(ctx, func(ob *openBuffer, _ *buffer.TextBuffer) error {
		out := make([]cursor.Cursor, len(ob.cursors))
		for i, c := range ob.cursors {
			out[i] = f(c)
		}
		ob.cursors = cursor.Normalize(out)
		return nil
	})
}

// addCursorBelow adds a cursor on the line below the lowest cursor, in the
// main cursor's column where the line is long enough.
func (s *Session) addCursorBelow(ctx context.Context) error {
	return s.withFocused(ctx, func(ob *openBuffer, b *buffer.TextBuffer) error {
		main := ob.cursors[0]
		if i, err := cursor.MainIndex(ob.cursors); err == nil {
			main = ob.cursors[i]
		}
		line := ob.cursors[len(ob.cursors)-1].Line() + 1
		if line >= b.LineCount() {
			return nil
		}
		p := cursor.Position{Line: line, Column: min(main.Logical().Column, b.LineLength(line))}
		ob.cursors = cursor.AddCursor(ob.cursors, p)
		return nil
	})
}

// placeMark places a mark of the named kind (point, line, box or file) at
// every cursor.
func (s *Session) placeMark(ctx context.Context, kind string) error {
	place, ok := markKinds[kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMark, kind)
	}
	return s.mapCursors(ctx, place)
}

// addCursor adds a secondary cursor at line and column, clamped to the
// line's length.
func (s *Session) addCursor(ctx context.Context, line, column int) error {
	return s.withFocused(ctx, func(ob *openBuffer, b *buffer.TextBuffer) error {
		if line < 0 || line >= b.LineCount() || column < 0 {
			return fmt.Errorf("%w: %d:%d", ErrPositionOutOfRange, line, column)
		}
		p := cursor.Position{Line: line, Column: min(column, b.LineLength(line))}
		ob.cursors = cursor.AddCursor(ob.cursors, p)
		return nil
	})
}

// removeCursor removes the secondary cursor at index.
func (s *Session) removeCursor(ctx context.Context, index int) error {
	return s.withFocused(ctx, func(ob *openBuffer, _ *buffer.TextBuffer) error {
		cursors, err := cursor.RemoveCursor(ob.cursors, index)
		ob.cursors = cursors
		return err
	})
}

// removeSecondaryCursors keeps only the main cursor.
func (s *Session) removeSecondaryCursors(ctx context.Context) error {
	return s.withFocused(ctx, func(ob *openBuffer, _ *buffer.TextBuffer) error {
		for i := len(ob.cursors) - 1; i >= 0; i-- {
			if ob.cursors[i].IsMain() {
				continue
			}
			cursors, err := cursor.RemoveCursor(ob.cursors, i)
			if err != nil {
				return err
			}
			ob.cursors = cursors
		}
		return nil
	})
}

// changeMainCursor makes the cursor at index main.
func (s *Session) changeMainCursor(ctx context.Context, index int) error {
	return s.withFocused(ctx, func(ob *openBuffer, _ *buffer.TextBuffer) error {
		cursors, err := cursor.ChangeMainCursor(ob.cursors, index)
		ob.cursors = cursors
		return err
	})
}

// cycleMain moves the main cursor by step through the cursor list,
// wrapping at either end.
func cycleMain(step int) Action {
	return func(ctx context.Context, s *Session) error {
		ob := s.focused(ctx)
		n := len(ob.cursors)
		i, err := cursor.MainIndex(ob.cursors)
		if err != nil {
			return err
		}
		return s.changeMainCursor(ctx, ((i+step)%n+n)%n)
	}
}

// describeCursors lists the focused buffer's cursors, the main one starred.
func (s *Session) describeCursors() string {
	cursors := s.buffers[s.focus].cursors
	parts := make([]string, len(cursors))
	for i, c := range cursors {
		parts[i] = c.Position().String()
		if c.IsMain() {
			parts[i] += "*"
		}
	}
	return fmt.Sprintf("%d cursors: %s", len(cursors), strings.Join(parts, " "))
}

func (s *Session) undo(ctx context.Context) error {
	return s.withWritable(ctx, func(ob *openBuffer, b *buffer.TextBuffer) error {
		cursors, err := b.Undo(ob.cursors)
		ob.cursors = cursors
		return err
	})
}

func (s *Session) redo(ctx context.Context) error {
	return s.withWritable(ctx, func(ob *openBuffer, b *buffer.TextBuffer) error {
		cursors, err := b.Redo(ob.cursors)
		ob.cursors = cursors
		return err
	})
}

func (s *Session) redoBranch(ctx context.Context, index int) error {
	return s.withWritable(ctx, func(ob *openBuffer, b *buffer.TextBuffer) error {
		cursors, err := b.RedoBranch(index, ob.cursors)
		ob.cursors = cursors
		return err
	})
}

func (s *Session) redoBranches(ctx context.Context) (int, error) {
	var n int
	err := s.withFocused(ctx, func(_ *openBuffer, b *buffer.TextBuffer) error {
		n = b.RedoBranchLen()
		return nil
	})
	return n, err
}
