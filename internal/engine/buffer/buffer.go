package buffer

import (
	"strings"

	"github.com/koru-editor/koru/internal/engine/cursor"
	"github.com/koru-editor/koru/internal/engine/rope"
	"github.com/koru-editor/koru/internal/engine/undo"
)

// TextBuffer owns the text of one buffer and its undo history.
type TextBuffer struct {
	name     string
	path     string
	text     rope.Rope
	history  *undo.Tree
	undoOpts []undo.Option
	modified bool
	revision uint64
	// disk is the xxhash of the file contents as last read or written.
	disk uint64
}

// New creates an in-memory buffer named name holding contents.
func New(name, contents string, opts ...Option) *TextBuffer {
	o := buildOptions(opts)
	return &TextBuffer{
		name:     name,
		text:     rope.FromString(normalize(contents)),
		history:  undo.New(o.undo...),
		undoOpts: o.undo,
	}
}

// normalize converts line endings to LF and guarantees a trailing newline.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}

// Name returns the buffer's name. File buffers are named by canonical path.
func (b *TextBuffer) Name() string { return b.name }

// SetName renames the buffer.
func (b *TextBuffer) SetName(name string) { b.name = name }

// Path returns the backing file, or "" for in-memory buffers.
func (b *TextBuffer) Path() string { return b.path }

// Text returns the full contents.
func (b *TextBuffer) Text() string { return b.text.String() }

// Rope returns the current contents as an immutable rope.
func (b *TextBuffer) Rope() rope.Rope { return b.text }

// Len returns the length in bytes.
func (b *TextBuffer) Len() int { return b.text.Len() }

// LineCount returns the number of lines.
func (b *TextBuffer) LineCount() int { return b.text.LineCount() }

// LineLength returns the length of line in characters.
func (b *TextBuffer) LineLength(line int) int { return b.text.LineLength(line) }

// LineText returns line without its terminator.
func (b *TextBuffer) LineText(line int) string { return b.text.LineText(line) }

// Modified reports whether the buffer changed since it was loaded or saved.
func (b *TextBuffer) Modified() bool { return b.modified }

// Revision increases with every change to the text.
func (b *TextBuffer) Revision() uint64 { return b.revision }

// Offset returns the byte offset of a cursor position.
func (b *TextBuffer) Offset(p cursor.Position) int {
	return b.text.Offset(p.Line, p.Column)
}

// Position returns the cursor position of a byte offset.
func (b *TextBuffer) Position(offset int) cursor.Position {
	line, col := b.text.Position(offset)
	return cursor.Position{Line: line, Column: col}
}

// MoveCursors moves every cursor in d and merges collisions.
func (b *TextBuffer) MoveCursors(cursors []cursor.Cursor, d cursor.Direction) []cursor.Cursor {
	return cursor.MoveCursors(cursors, d, b)
}

// MoveCursor moves a single cursor. The boolean is false when the move
// removes the cursor.
func (b *TextBuffer) MoveCursor(c cursor.Cursor, d cursor.Direction) (cursor.Cursor, bool) {
	return c.Move(d, b)
}

// ClampCursors pulls cursors that lie outside the text back inside it.
// Callers use it on cursor lists that another holder's edits may have
// invalidated.
func (b *TextBuffer) ClampCursors(cursors []cursor.Cursor) []cursor.Cursor {
	clampPos := func(p cursor.Position) cursor.Position {
		line := min(p.Line, b.LineCount()-1)
		return cursor.Position{Line: line, Column: min(p.Column, b.LineLength(line))}
	}

	out := make([]cursor.Cursor, len(cursors))
	for i, c := range cursors {
		if p := clampPos(c.Position()); p != c.Position() {
			c = c.MoveTo(p.Line, p.Column)
		}
		if m, ok := c.Mark(); ok {
			c = c.WithMark(clampPos(m), c.MarkState())
		}
		out[i] = c
	}
	return cursor.Normalize(out)
}

// UndoSnapshot returns a serializable copy of the undo history.
func (b *TextBuffer) UndoSnapshot() undo.Snapshot {
	return b.history.Snapshot()
}

// RestoreUndo replaces the undo history with s.
func (b *TextBuffer) RestoreUndo(s undo.Snapshot) error {
	tree, err := undo.Restore(s, b.undoOpts...)
	if err != nil {
		return err
	}
	b.history = tree
	return nil
}
