package terminal

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/koru-editor/koru/internal/styled"
)

var (
	textStyle   = styled.Style{Fg: styled.ColorText, Bg: styled.ColorBase}
	statusStyle = styled.Style{Fg: styled.ColorSubtext1, Bg: styled.ColorSurface0}
)

// render redraws the whole screen. The bottom two rows hold the status
// line and the message bar; the rest shows the buffer, scrolled so the
// main cursor stays visible.
func (f *Frontend) render() {
	width, height := f.screen.Size()
	f.screen.Fill(' ', f.theme.Style(textStyle))

	rows := max(height-2, 0)
	f.scroll(rows)
	for y := 0; y < rows && f.top+y < len(f.file.Lines); y++ {
		f.drawLine(y, width, f.file.Lines[f.top+y])
	}

	if height >= 2 {
		status := f.theme.Style(statusStyle)
		for x := 0; x < width; x++ {
			f.screen.SetContent(x, height-2, ' ', nil, status)
		}
		line := " " + f.buffer
		if f.mode != "" {
			line += "  (" + f.mode + ")"
		}
		f.drawRun(0, height-2, width, line, status)
	}
	if height >= 1 {
		f.drawRun(0, height-1, width, f.message, f.theme.Style(textStyle))
	}
	f.screen.HideCursor()
	f.screen.Show()
}

// scroll moves top so that the line holding the main cursor is on screen.
func (f *Frontend) scroll(rows int) {
	line := f.file.MainCursorLine()
	switch {
	case line < 0 || rows == 0:
	case line < f.top:
		f.top = line
	case line >= f.top+rows:
		f.top = line - rows + 1
	}
	f.top = max(min(f.top, len(f.file.Lines)-1), 0)
}

func (f *Frontend) drawLine(y, width int, line styled.Line) {
	x := 0
	for _, run := range line {
		style := f.theme.Style(run.Style)
		if run.IsPlain() {
			style = f.theme.Style(textStyle)
		}
		x = f.drawRun(x, y, width, run.Text, style)
		if x >= width {
			return
		}
	}
}

// drawRun writes text from column x, one grapheme cluster at a time, and
// returns the column after it. Tabs advance to the next tab stop.
func (f *Frontend) drawRun(x, y, width int, text string, style tcell.Style) int {
	state := -1
	for text != "" && x < width {
		var cluster string
		var w int
		cluster, text, w, state = uniseg.FirstGraphemeClusterInString(text, state)

		if cluster == "\t" {
			next := (x/f.tabWidth + 1) * f.tabWidth
			for ; x < next && x < width; x++ {
				f.screen.SetContent(x, y, ' ', nil, style)
			}
			continue
		}

		runes := []rune(cluster)
		if w == 0 {
			w = 1
		}
		if x+w > width {
			return width
		}
		f.screen.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
	return x
}
