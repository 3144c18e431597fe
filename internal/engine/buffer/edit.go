package buffer

import (
	"strings"
	"unicode/utf8"

	"github.com/koru-editor/koru/internal/engine/cursor"
)

// change is one splice of the text on behalf of an acting cursor.
type change struct {
	start, end int
	text       string

	// actor is the index of the acting cursor, or -1. It is placed at point.
	actor     int
	point     int
	clearMark bool
}

// splice applies ch to the text and moves every cursor at or after the edit
// point. The result is not normalized.
func (b *TextBuffer) splice(ch change, cursors []cursor.Cursor) []cursor.Cursor {
	type offsets struct{ real, mark int }
	before := make([]offsets, len(cursors))
	for i, c := range cursors {
		before[i].real = b.Offset(c.Position())
		if m, ok := c.Mark(); ok {
			before[i].mark = b.Offset(m)
		}
	}

	b.text = b.text.Replace(ch.start, ch.end, ch.text)
	b.modified = true
	b.revision++

	e := cursor.Edit{Start: ch.start, End: ch.end, NewLen: len(ch.text)}
	out := make([]cursor.Cursor, len(cursors))
	for i, c := range cursors {
		switch {
		case i == ch.actor:
			p := b.Position(ch.point)
			c = c.MoveTo(p.Line, p.Column)
		case before[i].real >= ch.start:
			p := b.Position(cursor.TransformOffset(before[i].real, e, false))
			c = c.MoveTo(p.Line, p.Column)
		}

		if m, ok := c.Mark(); ok {
			switch {
			case i == ch.actor && ch.clearMark:
				c = c.RemoveMark()
			case before[i].mark >= ch.start:
				m = b.Position(cursor.TransformOffset(before[i].mark, e, true))
				c = c.WithMark(m, c.MarkState())
			}
		}
		out[i] = c
	}
	return out
}

func (b *TextBuffer) checkIndex(index int, cursors []cursor.Cursor) error {
	if index < 0 || index >= len(cursors) {
		return ErrCursorIndexOutOfRange
	}
	return nil
}

// Insert inserts text at the cursor at index.
func (b *TextBuffer) Insert(text string, index int, cursors []cursor.Cursor) ([]cursor.Cursor, error) {
	if err := b.checkIndex(index, cursors); err != nil {
		return cursors, err
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return cursors, nil
	}

	off := b.Offset(cursors[index].Position())
	b.history.Insert(off, text)
	out := b.splice(change{start: off, end: off, text: text, actor: index, point: off + len(text)}, cursors)
	return cursor.Normalize(out), nil
}

// DeleteBack deletes the character before the cursor at index.
func (b *TextBuffer) DeleteBack(index int, cursors []cursor.Cursor) ([]cursor.Cursor, error) {
	if err := b.checkIndex(index, cursors); err != nil {
		return cursors, err
	}
	off := b.Offset(cursors[index].Position())
	if off == 0 {
		return cursors, nil
	}

	_, size := utf8.DecodeLastRuneInString(b.text.Slice(max(off-utf8.UTFMax, 0), off))
	start := off - size
	b.history.Delete(start, b.text.Slice(start, off))
	out := b.splice(change{start: start, end: off, actor: index, point: start}, cursors)
	return cursor.Normalize(out), nil
}

// DeleteForward deletes the character under the cursor at index. The final
// newline of the buffer is never deleted.
func (b *TextBuffer) DeleteForward(index int, cursors []cursor.Cursor) ([]cursor.Cursor, error) {
	if err := b.checkIndex(index, cursors); err != nil {
		return cursors, err
	}
	off := b.Offset(cursors[index].Position())
	if off >= b.text.Len()-1 {
		return cursors, nil
	}

	_, size := utf8.DecodeRuneInString(b.text.Slice(off, off+utf8.UTFMax))
	end := off + size
	b.history.Delete(off, b.text.Slice(off, end))
	out := b.splice(change{start: off, end: end, actor: index, point: off}, cursors)
	return cursor.Normalize(out), nil
}

// span is a byte range of the text.
type span struct{ start, end int }

// regionSpans returns the byte ranges selected by c, last range first.
func (b *TextBuffer) regionSpans(c cursor.Cursor) ([]span, error) {
	start, end, ok := c.Bounds()
	if !ok {
		return nil, ErrNoMark
	}

	switch c.MarkState() {
	case cursor.MarkFile:
		return []span{{0, b.text.Len() - 1}}, nil

	case cursor.MarkLine:
		s := b.text.LineStart(start.Line)
		e := b.text.LineEnd(end.Line) + 1
		if e >= b.text.Len() {
			if s > 0 {
				s--
			}
			e = b.text.Len() - 1
		}
		return []span{{s, e}}, nil

	case cursor.MarkBox:
		mark, _ := c.Mark()
		lo := min(mark.Column, c.Column())
		hi := max(mark.Column, c.Column())
		spans := make([]span, 0, end.Line-start.Line+1)
		for line := end.Line; line >= start.Line; line-- {
			spans = append(spans, span{
				start: b.text.Offset(line, lo),
				end:   b.text.Offset(line, hi),
			})
		}
		return spans, nil

	default:
		return []span{{b.Offset(start), b.Offset(end)}}, nil
	}
}

// DeleteRegion deletes the selection of the cursor at index and clears its mark.
func (b *TextBuffer) DeleteRegion(index int, cursors []cursor.Cursor) ([]cursor.Cursor, error) {
	if err := b.checkIndex(index, cursors); err != nil {
		return cursors, err
	}
	spans, err := b.regionSpans(cursors[index])
	if err != nil {
		return cursors, err
	}
	return cursor.Normalize(b.deleteSpans(index, spans, cursors)), nil
}

// deleteSpans removes spans, given last first, as one undo step, leaving
// the acting cursor at the start of the topmost span with its mark cleared.
func (b *TextBuffer) deleteSpans(index int, spans []span, cursors []cursor.Cursor) []cursor.Cursor {
	if len(spans) > 1 {
		b.history.StartTransaction()
		defer func() { _ = b.history.EndTransaction() }()
	}

	out := append([]cursor.Cursor(nil), cursors...)
	for _, sp := range spans {
		if sp.start >= sp.end {
			continue
		}
		b.history.Delete(sp.start, b.text.Slice(sp.start, sp.end))
		out = b.splice(change{start: sp.start, end: sp.end, actor: index, point: sp.start}, out)
	}

	top := b.Position(spans[len(spans)-1].start)
	out[index] = out[index].MoveTo(top.Line, top.Column).RemoveMark()
	return out
}

// Replace replaces the selection of the cursor at index with text. Without a
// mark, text overwrites as many characters from the cursor as it holds,
// stopping at the end of the line.
func (b *TextBuffer) Replace(text string, index int, cursors []cursor.Cursor) ([]cursor.Cursor, error) {
	if err := b.checkIndex(index, cursors); err != nil {
		return cursors, err
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	c := cursors[index]

	var start, end int
	_, _, marked := c.Bounds()
	switch {
	case marked && c.MarkState() == cursor.MarkBox:
		spans, _ := b.regionSpans(c)
		b.history.StartTransaction()
		cursors = cursor.Normalize(b.deleteSpans(index, spans, cursors))
		index = b.indexAt(cursors, spans[len(spans)-1].start)
		out, err := b.Insert(text, index, cursors)
		_ = b.history.EndTransaction()
		return out, err
	case marked:
		spans, _ := b.regionSpans(c)
		start, end = spans[0].start, spans[0].end
	default:
		start = b.Offset(c.Position())
		n := min(utf8.RuneCountInString(text), b.LineLength(c.Line())-c.Column())
		end, _ = b.text.NextNChars(c.Line(), c.Column()+max(n, 0))
	}

	old := b.text.Slice(start, end)
	if old == "" && text == "" {
		return cursors, nil
	}
	b.history.Replace(start, old, text)
	out := b.splice(change{start: start, end: end, text: text, actor: index, point: start + len(text), clearMark: true}, cursors)
	return cursor.Normalize(out), nil
}

// indexAt returns the index of the cursor at byte offset off, preferring main.
func (b *TextBuffer) indexAt(cursors []cursor.Cursor, off int) int {
	p := b.Position(off)
	for i, c := range cursors {
		if c.Position() == p {
			return i
		}
	}
	i, _ := cursor.MainIndex(cursors)
	return max(i, 0)
}

// StartTransaction groups the following edits into one undo step until the
// matching EndTransaction.
func (b *TextBuffer) StartTransaction() {
	b.history.StartTransaction()
}

// EndTransaction closes the innermost transaction.
func (b *TextBuffer) EndTransaction() error {
	return b.history.EndTransaction()
}
