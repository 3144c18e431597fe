package styled

import (
	"strings"

	"github.com/koru-editor/koru/internal/engine/cursor"
)

// Attribute is a set of text attributes.
type Attribute uint8

// Text attribute flags.
const (
	AttrNone   Attribute = 0
	AttrItalic Attribute = 1 << (iota - 1)
	AttrBold
	AttrStrikethrough
	AttrUnderline
)

// Has returns true if the attribute set contains attr.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Style is the look of a run. The zero Style draws with the frontend's
// defaults.
type Style struct {
	Fg   ColorType
	Bg   ColorType
	Attr Attribute
}

// Run is a span of text drawn in one style.
type Run struct {
	Style
	Text string
}

// Plain returns an unstyled run.
func Plain(text string) Run {
	return Run{Text: text}
}

// IsPlain reports whether r carries no style.
func (r Run) IsPlain() bool {
	return r.Style == Style{}
}

// Line is the runs of one line of text.
type Line []Run

// Text returns the line's text without styling.
func (l Line) Text() string {
	var b strings.Builder
	for _, r := range l {
		b.WriteString(r.Text)
	}
	return b.String()
}

// File is a styled document.
type File struct {
	Lines []Line
}

// FromText builds an unstyled file. A trailing newline ends the last line
// rather than starting a new one.
func FromText(text string) File {
	text = strings.TrimSuffix(text, "\n")
	parts := strings.Split(text, "\n")
	lines := make([]Line, len(parts))
	for i, p := range parts {
		if p != "" {
			lines[i] = Line{Plain(p)}
		}
	}
	return File{Lines: lines}
}

// Text returns the file's text, one newline after every line.
func (f File) Text() string {
	var b strings.Builder
	for _, l := range f.Lines {
		b.WriteString(l.Text())
		b.WriteByte('\n')
	}
	return b.String()
}

// WithStyle returns a copy of f with every plain run drawn in style.
func (f File) WithStyle(style Style) File {
	out := File{Lines: make([]Line, len(f.Lines))}
	for i, l := range f.Lines {
		line := make(Line, len(l))
		for j, r := range l {
			if r.IsPlain() {
				r.Style = style
			}
			line[j] = r
		}
		out.Lines[i] = line
	}
	return out
}

// cell is one character with its style.
type cell struct {
	r     rune
	style Style
}

func explode(l Line) []cell {
	var cells []cell
	for _, run := range l {
		for _, r := range run.Text {
			cells = append(cells, cell{r: r, style: run.Style})
		}
	}
	return cells
}

// implode rebuilds runs, merging neighbouring cells of equal style.
func implode(cells []cell) Line {
	var out Line
	var b strings.Builder
	for i, c := range cells {
		b.WriteRune(c.r)
		if i == len(cells)-1 || cells[i+1].style != c.style {
			out = append(out, Run{Style: c.style, Text: b.String()})
			b.Reset()
		}
	}
	return out
}

var (
	selectionStyle = Style{Fg: ColorText, Bg: ColorSelection}
	cursorStyle    = Style{Fg: ColorBase, Bg: ColorCursor}
	// secondaryStyle draws every cursor but the main one.
	secondaryStyle = Style{Fg: ColorBase, Bg: ColorOverlay1}
)

// PlaceCursors returns a copy of f with every cursor and every selection
// baked into the runs. The main cursor is drawn in the Cursor colour and
// the others in Overlay1. A cursor past the end of its line is drawn on an
// added space.
func (f File) PlaceCursors(cursors []cursor.Cursor) File {
	if len(cursors) == 0 || len(f.Lines) == 0 {
		return f
	}

	out := File{Lines: make([]Line, len(f.Lines))}
	for line, l := range f.Lines {
		cells := explode(l)
		touched := false

		for _, c := range cursors {
			if _, ok := c.Mark(); !ok {
				continue
			}
			for col := range cells {
				if c.Contains(cursor.Position{Line: line, Column: col}) {
					cells[col].style = selectionStyle
					touched = true
				}
			}
		}

		for _, c := range cursors {
			if c.Line() != line {
				continue
			}
			col := min(c.Column(), len(cells))
			if col == len(cells) {
				cells = append(cells, cell{r: ' '})
			}
			if c.IsMain() {
				cells[col].style = cursorStyle
			} else {
				cells[col].style = secondaryStyle
			}
			touched = true
		}

		if touched {
			out.Lines[line] = implode(cells)
		} else {
			out.Lines[line] = l
		}
	}
	return out
}

// MainCursorLine returns the line the main cursor was placed on, or -1 when
// no cursor has been placed.
func (f File) MainCursorLine() int {
	for i, l := range f.Lines {
		for _, r := range l {
			if r.Style == cursorStyle {
				return i
			}
		}
	}
	return -1
}
