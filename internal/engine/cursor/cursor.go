package cursor

import "fmt"

// Position is a line and code point column, both 0-indexed.
type Position struct {
	Line   int
	Column int
}

// Less reports whether p sorts before o.
func (p Position) Less(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// String returns "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// MarkState is the selection shape spanned by a cursor's mark and point.
type MarkState uint8

const (
	MarkNone MarkState = iota
	// MarkPoint selects the characters between mark and point.
	MarkPoint
	// MarkLine selects every line from mark to point, terminators included.
	MarkLine
	// MarkBox selects the column rectangle with mark and point as corners.
	MarkBox
	// MarkFile selects the whole buffer.
	MarkFile
)

// String returns the mark state name.
func (m MarkState) String() string {
	switch m {
	case MarkNone:
		return "none"
	case MarkPoint:
		return "point"
	case MarkLine:
		return "line"
	case MarkBox:
		return "box"
	case MarkFile:
		return "file"
	default:
		return fmt.Sprintf("MarkState(%d)", m)
	}
}

// Lines is the view of a text a cursor needs to move.
type Lines interface {
	LineCount() int
	LineLength(line int) int
}

// Cursor is one point of insertion, with an optional mark.
type Cursor struct {
	logical   Position
	real      Position
	mark      Position
	markState MarkState
	main      bool
}

// New creates a secondary cursor.
func New(line, column int) Cursor {
	p := Position{Line: max(line, 0), Column: max(column, 0)}
	return Cursor{logical: p, real: p}
}

// NewMain creates a main cursor.
func NewMain(line, column int) Cursor {
	c := New(line, column)
	c.main = true
	return c
}

// Position returns the real position, where edits apply.
func (c Cursor) Position() Position { return c.real }

// Logical returns the remembered position.
func (c Cursor) Logical() Position { return c.logical }

// Line returns the real line.
func (c Cursor) Line() int { return c.real.Line }

// Column returns the real column.
func (c Cursor) Column() int { return c.real.Column }

// IsMain reports whether c is the main cursor.
func (c Cursor) IsMain() bool { return c.main }

// Mark returns the mark position and whether a mark is set.
func (c Cursor) Mark() (Position, bool) {
	return c.mark, c.markState != MarkNone
}

// MarkState returns the selection shape.
func (c Cursor) MarkState() MarkState { return c.markState }

// SetMain returns c with its main flag set to main.
func (c Cursor) SetMain(main bool) Cursor {
	c.main = main
	return c
}

// MoveTo places both positions at (line, column).
func (c Cursor) MoveTo(line, column int) Cursor {
	c.real = Position{Line: max(line, 0), Column: max(column, 0)}
	c.logical = c.real
	return c
}

// WithMark returns c with the given mark. MarkNone clears it.
func (c Cursor) WithMark(p Position, state MarkState) Cursor {
	c.markState = state
	c.mark = p
	if state == MarkNone {
		c.mark = Position{}
	}
	return c
}

func (c Cursor) placeMark(state MarkState) Cursor {
	return c.WithMark(c.real, state)
}

// PlacePointMark anchors a character selection at the cursor.
func (c Cursor) PlacePointMark() Cursor { return c.placeMark(MarkPoint) }

// PlaceLineMark anchors a line selection at the cursor.
func (c Cursor) PlaceLineMark() Cursor { return c.placeMark(MarkLine) }

// PlaceBoxMark anchors a rectangular selection at the cursor.
func (c Cursor) PlaceBoxMark() Cursor { return c.placeMark(MarkBox) }

// PlaceFileMark selects the whole buffer.
func (c Cursor) PlaceFileMark() Cursor { return c.placeMark(MarkFile) }

// RemoveMark clears the mark.
func (c Cursor) RemoveMark() Cursor { return c.WithMark(Position{}, MarkNone) }

// FlipMark exchanges point and mark. Without a mark it returns c unchanged.
func (c Cursor) FlipMark() Cursor {
	if c.markState == MarkNone {
		return c
	}
	c.real, c.mark = c.mark, c.real
	c.logical = c.real
	return c
}

// Bounds returns the ordered ends of the span between mark and point.
// ok is false when no mark is set.
func (c Cursor) Bounds() (start, end Position, ok bool) {
	if c.markState == MarkNone {
		return c.real, c.real, false
	}
	if c.mark.Less(c.real) {
		return c.mark, c.real, true
	}
	return c.real, c.mark, true
}

// Contains reports whether p lies in the cursor's selection, using the
// selection shape. The end of a point selection is exclusive.
func (c Cursor) Contains(p Position) bool {
	start, end, ok := c.Bounds()
	if !ok {
		return false
	}
	switch c.markState {
	case MarkFile:
		return true
	case MarkLine:
		return p.Line >= start.Line && p.Line <= end.Line
	case MarkBox:
		lo, hi := min(c.mark.Column, c.real.Column), max(c.mark.Column, c.real.Column)
		return p.Line >= start.Line && p.Line <= end.Line && p.Column >= lo && p.Column < hi
	default:
		return !p.Less(start) && p.Less(end)
	}
}

// clamp pulls the real position inside lines, keeping the logical column.
func (c Cursor) clamp(lines Lines) Cursor {
	c.real.Line = min(c.real.Line, lines.LineCount()-1)
	c.logical.Line = c.real.Line
	c.real.Column = min(c.logical.Column, lines.LineLength(c.real.Line))
	return c
}

// String returns a debugging representation.
func (c Cursor) String() string {
	s := c.real.String()
	if c.logical != c.real {
		s += "(" + c.logical.String() + ")"
	}
	if c.markState != MarkNone {
		s += " mark=" + c.mark.String() + "/" + c.markState.String()
	}
	if c.main {
		s += " main"
	}
	return s
}
