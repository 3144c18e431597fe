package buffer

import (
	"github.com/koru-editor/koru/internal/engine/cursor"
	"github.com/koru-editor/koru/internal/engine/undo"
)

// Undo reverts the current undo step. The main cursor moves to the change.
func (b *TextBuffer) Undo(cursors []cursor.Cursor) ([]cursor.Cursor, error) {
	op, err := b.history.Undo()
	if err != nil {
		return cursors, err
	}
	return cursor.Normalize(b.applyOperation(op, cursors)), nil
}

// Redo re-applies the newest branch below the current undo step.
func (b *TextBuffer) Redo(cursors []cursor.Cursor) ([]cursor.Cursor, error) {
	op, err := b.history.Redo()
	if err != nil {
		return cursors, err
	}
	return cursor.Normalize(b.applyOperation(op, cursors)), nil
}

// RedoBranch re-applies redo branch index below the current undo step.
func (b *TextBuffer) RedoBranch(index int, cursors []cursor.Cursor) ([]cursor.Cursor, error) {
	op, err := b.history.RedoBranch(index)
	if err != nil {
		return cursors, err
	}
	return cursor.Normalize(b.applyOperation(op, cursors)), nil
}

// RedoBranchLen returns how many redo branches the current undo step has.
func (b *TextBuffer) RedoBranchLen() int {
	return b.history.RedoBranchLen()
}

// applyOperation applies op to the text without recording it.
func (b *TextBuffer) applyOperation(op undo.EditOperation, cursors []cursor.Cursor) []cursor.Cursor {
	main, _ := cursor.MainIndex(cursors)

	switch op.Kind {
	case undo.OpInsert:
		return b.splice(change{start: op.Offset, end: op.Offset, text: op.Text, actor: main, point: op.Offset + len(op.Text)}, cursors)
	case undo.OpDelete:
		return b.splice(change{start: op.Offset, end: op.Offset + op.Length, actor: main, point: op.Offset}, cursors)
	case undo.OpReplace:
		return b.splice(change{start: op.Offset, end: op.Offset + op.Length, text: op.Text, actor: main, point: op.Offset + len(op.Text)}, cursors)
	case undo.OpBulk:
		for _, sub := range op.Ops {
			cursors = b.applyOperation(sub, cursors)
		}
	}
	return cursors
}
