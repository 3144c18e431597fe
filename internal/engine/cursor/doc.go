// Package cursor implements koru's multi-cursor model.
//
// A Cursor carries two positions. The logical position remembers the column
// the user last chose, which may lie past the end of a short line after
// vertical movement. The real position is that column clamped to the line,
// and is where edits happen. A cursor may also carry a mark whose MarkState
// gives the selection shape between mark and point.
//
// Cursor lists handed around koru are kept sorted by real position, hold no
// duplicates and contain exactly one main cursor. MoveCursors and Normalize
// restore that after movement; when two cursors collide the main one wins.
//
// Cursors are immutable values. Methods return modified copies.
//
// Basic usage:
//
//	cursors := []cursor.Cursor{cursor.NewMain(0, 5), cursor.New(0, 4)}
//	cursors = cursor.MoveCursors(cursors, cursor.Right, text)
//	// one main cursor at (0, 5) when line 0 is five characters long
package cursor
