package rope

import "unicode/utf8"

// LineInfo describes one line: its first byte, its length in code points,
// and the byte offset of its terminator (or the end of text).
type LineInfo struct {
	Start  int
	Length int
	End    int
}

// LineCount returns the number of lines. A trailing newline terminates the
// last line, so "" and "a\n" both have one line and "a\nb" has two.
func (r Rope) LineCount() int {
	n := r.NewlineCount()
	if last, ok := r.ByteAt(r.Len() - 1); ok && last != '\n' {
		n++
	}
	return max(n, 1)
}

// clampLine maps an out-of-range line number onto the nearest valid line.
func (r Rope) clampLine(line int) int {
	return min(max(line, 0), r.LineCount()-1)
}

// HasNextLine reports whether a line follows line.
func (r Rope) HasNextLine(line int) bool {
	return line+1 < r.LineCount()
}

// HasPrevLine reports whether a line precedes line.
func (r Rope) HasPrevLine(line int) bool {
	return line > 0
}

// LineStart returns the byte offset of the first byte of line.
func (r Rope) LineStart(line int) int {
	line = r.clampLine(line)
	if line == 0 {
		return 0
	}
	off, _ := r.root.newlineOffset(line)
	return off + 1
}

// LineEnd returns the byte offset of line's terminating newline, or the end
// of the text when the last line is unterminated.
func (r Rope) LineEnd(line int) int {
	if r.root == nil {
		return 0
	}
	if off, ok := r.root.newlineOffset(r.clampLine(line) + 1); ok {
		return off
	}
	return r.Len()
}

// LineText returns the text of line without its terminator.
func (r Rope) LineText(line int) string {
	return r.Slice(r.LineStart(line), r.LineEnd(line))
}

// LineLength returns the number of code points in line, excluding the terminator.
func (r Rope) LineLength(line int) int {
	return utf8.RuneCountInString(r.LineText(line))
}

// LineInformation returns the start offset, code point length and end offset of line.
func (r Rope) LineInformation(line int) LineInfo {
	start, end := r.LineStart(line), r.LineEnd(line)
	return LineInfo{
		Start:  start,
		Length: utf8.RuneCountInString(r.Slice(start, end)),
		End:    end,
	}
}

// NextNChars walks n code points from the start of line. It returns the byte
// offset reached and the byte size of the last code point walked over (zero
// when n is zero). The walk stops at the end of the line.
func (r Rope) NextNChars(line, n int) (int, int) {
	start := r.LineStart(line)
	text := r.LineText(line)

	pos, size := 0, 0
	for i := 0; i < n && pos < len(text); i++ {
		size = runeSizeAt(text, pos)
		pos += size
	}
	return start + pos, size
}

// Offset converts a line and code point column to a byte offset. Columns past
// the end of the line map to the line's end.
func (r Rope) Offset(line, column int) int {
	off, _ := r.NextNChars(line, column)
	return off
}

// Position converts a byte offset to a line and code point column.
func (r Rope) Position(offset int) (int, int) {
	offset = min(max(offset, 0), r.Len())
	line := 0
	if r.root != nil {
		line = r.clampLine(r.root.newlinesBefore(offset))
	}
	start, end := r.LineStart(line), r.LineEnd(line)
	return line, utf8.RuneCountInString(r.Slice(start, min(offset, end)))
}
