// Package rope provides the immutable text store behind every koru buffer.
//
// A rope is a B+ tree whose leaves hold bounded text chunks and whose internal
// nodes cache aggregated metrics (bytes, code points, newlines). Edits return
// new ropes that share unchanged subtrees with the original, so a Rope value
// is a cheap snapshot and is safe for concurrent reads.
//
// Text is addressed two ways:
//   - byte offsets, used by edits and the undo history
//   - line numbers with code-point columns, used by cursors
//
// A trailing newline terminates the final line rather than opening a new one:
// "a\nb\n" has two lines. Line-addressed queries clamp out-of-range line
// numbers to the last line.
//
// Basic usage:
//
//	r := rope.FromString("hello\nworld\n")
//	r = r.Insert(5, ",")          // "hello,\nworld\n"
//	n := r.LineLength(0)          // 6
//	start, size := r.NextNChars(1, 2)
package rope
