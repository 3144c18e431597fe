package cursor

import (
	"fmt"
	"sort"
)

// Direction is a cursor motion.
type Direction uint8

const (
	Up Direction = iota
	Down
	// Left and Right stop at line boundaries.
	Left
	Right
	// LeftWrap and RightWrap continue onto the neighbouring line.
	LeftWrap
	RightWrap
	LineStart
	LineEnd
	FileStart
	FileEnd
)

var directionNames = map[string]Direction{
	"up":         Up,
	"down":       Down,
	"left":       Left,
	"right":      Right,
	"left-wrap":  LeftWrap,
	"right-wrap": RightWrap,
	"line-start": LineStart,
	"line-end":   LineEnd,
	"file-start": FileStart,
	"file-end":   FileEnd,
}

// ParseDirection converts a direction name such as "left-wrap" to a Direction.
func ParseDirection(name string) (Direction, error) {
	if d, ok := directionNames[name]; ok {
		return d, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, name)
}

// String returns the direction name accepted by ParseDirection.
func (d Direction) String() string {
	for name, dir := range directionNames {
		if dir == d {
			return name
		}
	}
	return fmt.Sprintf("Direction(%d)", d)
}

// MoveUp moves to the previous line, keeping the remembered column.
// On the first line the cursor stays put.
func (c Cursor) MoveUp(lines Lines) Cursor {
	c = c.clamp(lines)
	if c.real.Line == 0 {
		return c
	}
	c.real.Line--
	c.logical.Line = c.real.Line
	c.real.Column = min(c.logical.Column, lines.LineLength(c.real.Line))
	return c
}

// MoveDown moves to the next line, keeping the remembered column.
// On the last line the cursor stays put.
func (c Cursor) MoveDown(lines Lines) Cursor {
	c = c.clamp(lines)
	if c.real.Line+1 >= lines.LineCount() {
		return c
	}
	c.real.Line++
	c.logical.Line = c.real.Line
	c.real.Column = min(c.logical.Column, lines.LineLength(c.real.Line))
	return c
}

// MoveLeft moves one column left on a line of lineLen characters,
// saturating at column 0.
func (c Cursor) MoveLeft(lineLen int) Cursor {
	col := min(c.real.Column, lineLen)
	if col > 0 {
		col--
	}
	c.real.Column = col
	c.logical.Column = col
	return c
}

// MoveRight moves one column right on a line of lineLen characters,
// saturating at the line end.
func (c Cursor) MoveRight(lineLen int) Cursor {
	col := min(c.real.Column, lineLen)
	if col < lineLen {
		col++
	}
	c.real.Column = col
	c.logical.Column = col
	return c
}

// Move applies d to c. The boolean is false when the cursor should be
// removed: a wrapping move that runs off either end of the file deletes a
// secondary cursor, while the main cursor stays where it is.
func (c Cursor) Move(d Direction, lines Lines) (Cursor, bool) {
	c = c.clamp(lines)
	line := c.real.Line
	lineLen := lines.LineLength(line)

	switch d {
	case Up:
		return c.MoveUp(lines), true
	case Down:
		return c.MoveDown(lines), true
	case Left:
		return c.MoveLeft(lineLen), true
	case Right:
		return c.MoveRight(lineLen), true
	case LeftWrap:
		switch {
		case c.real.Column > 0:
			return c.MoveLeft(lineLen), true
		case line > 0:
			return c.MoveTo(line-1, lines.LineLength(line-1)), true
		}
		return c, c.main
	case RightWrap:
		switch {
		case c.real.Column < lineLen:
			return c.MoveRight(lineLen), true
		case line+1 < lines.LineCount():
			return c.MoveTo(line+1, 0), true
		}
		return c, c.main
	case LineStart:
		return c.MoveTo(line, 0), true
	case LineEnd:
		return c.MoveTo(line, lineLen), true
	case FileStart:
		return c.MoveTo(0, 0), true
	case FileEnd:
		last := lines.LineCount() - 1
		return c.MoveTo(last, lines.LineLength(last)), true
	}
	return c, true
}

// MoveCursors moves every cursor in d, drops the cursors removed by the move
// and merges the survivors.
func MoveCursors(cursors []Cursor, d Direction, lines Lines) []Cursor {
	moved := make([]Cursor, 0, len(cursors))
	for _, c := range cursors {
		if next, ok := c.Move(d, lines); ok {
			moved = append(moved, next)
		}
	}
	return Normalize(moved)
}

// Normalize sorts cursors by real position and merges cursors that share a
// position. When one of the merged cursors is main the survivor is main.
func Normalize(cursors []Cursor) []Cursor {
	sorted := append([]Cursor(nil), cursors...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].real.Less(sorted[j].real)
	})

	out := sorted[:0]
	for _, c := range sorted {
		if n := len(out); n > 0 && out[n-1].real == c.real {
			if c.main && !out[n-1].main {
				out[n-1] = c
			}
			continue
		}
		out = append(out, c)
	}
	return out
}
