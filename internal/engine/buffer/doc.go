// Package buffer implements koru's TextBuffer: one rope, its undo tree and
// the edit operations that keep cursors consistent with both.
//
// Every edit operation takes the cursor list and the index of the cursor
// that acts, mutates the text, records the change in the undo tree, moves
// every cursor at or after the edit point and returns the new cursor list.
// Cursor lists are owned by callers, so two sessions can show the same
// buffer with different cursors.
//
// Buffers always end with a newline. Edits never remove it.
//
// A TextBuffer is not safe for concurrent use. Share it through a Handle,
// whose Lock serialises access and honours context cancellation:
//
//	h := buffer.NewHandle(buffer.New("scratch", ""))
//	err := h.With(ctx, func(b *buffer.TextBuffer) error {
//	    cursors, err = b.Insert("hello", 0, cursors)
//	    return err
//	})
package buffer
