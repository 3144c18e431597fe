package cursor

import (
	"errors"
	"testing"

	"pgregory.net/rapid"
)

// testLines is a Lines backed by a slice of line lengths.
type testLines []int

func (l testLines) LineCount() int          { return len(l) }
func (l testLines) LineLength(line int) int { return l[line] }

func TestVerticalMoveRemembersColumn(t *testing.T) {
	lines := testLines{12, 3, 15}
	c := NewMain(0, 10)

	c = c.MoveDown(lines)
	if c.Position() != (Position{Line: 1, Column: 3}) {
		t.Errorf("on short line Position() = %v, want 1:3", c.Position())
	}
	if c.Logical().Column != 10 {
		t.Errorf("logical column = %d, want 10", c.Logical().Column)
	}

	c = c.MoveDown(lines)
	if c.Position() != (Position{Line: 2, Column: 10}) {
		t.Errorf("back on long line Position() = %v, want 2:10", c.Position())
	}
}

func TestVerticalMoveSaturates(t *testing.T) {
	lines := testLines{4, 4}
	if c := New(0, 2).MoveUp(lines); c.Position() != (Position{0, 2}) {
		t.Errorf("MoveUp on first line = %v", c.Position())
	}
	if c := New(1, 2).MoveDown(lines); c.Position() != (Position{1, 2}) {
		t.Errorf("MoveDown on last line = %v", c.Position())
	}
}

func TestHorizontalMove(t *testing.T) {
	tests := []struct {
		name    string
		column  int
		lineLen int
		right   bool
		want    int
	}{
		{"left", 3, 5, false, 2},
		{"left at start", 0, 5, false, 0},
		{"right", 3, 5, true, 4},
		{"right at end", 5, 5, true, 5},
		{"left after line shrank", 9, 4, false, 3},
		{"right after line shrank", 9, 4, true, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(0, tt.column)
			if tt.right {
				c = c.MoveRight(tt.lineLen)
			} else {
				c = c.MoveLeft(tt.lineLen)
			}
			if c.Column() != tt.want || c.Logical().Column != tt.want {
				t.Errorf("column = %d (logical %d), want %d", c.Column(), c.Logical().Column, tt.want)
			}
		})
	}
}

func TestWrappingMove(t *testing.T) {
	lines := testLines{3, 5}

	c, ok := New(1, 0).Move(LeftWrap, lines)
	if !ok || c.Position() != (Position{0, 3}) {
		t.Errorf("LeftWrap from 1:0 = %v, %v", c.Position(), ok)
	}
	c, ok = New(0, 3).Move(RightWrap, lines)
	if !ok || c.Position() != (Position{1, 0}) {
		t.Errorf("RightWrap from 0:3 = %v, %v", c.Position(), ok)
	}
	c, ok = New(0, 3).Move(Right, lines)
	if !ok || c.Position() != (Position{0, 3}) {
		t.Errorf("Right without wrap from 0:3 = %v, %v", c.Position(), ok)
	}
}

func TestFileBoundary(t *testing.T) {
	lines := testLines{3, 5}
	tests := []struct {
		name   string
		cursor Cursor
		dir    Direction
		keep   bool
	}{
		{"main at start", NewMain(0, 0), LeftWrap, true},
		{"secondary at start", New(0, 0), LeftWrap, false},
		{"main at end", NewMain(1, 5), RightWrap, true},
		{"secondary at end", New(1, 5), RightWrap, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.cursor.Move(tt.dir, lines)
			if ok != tt.keep {
				t.Fatalf("Move() kept = %v, want %v", ok, tt.keep)
			}
			if ok && got != tt.cursor {
				t.Errorf("main cursor moved to %v", got)
			}
		})
	}
}

func TestMoveCursorsMergesIntoMain(t *testing.T) {
	lines := testLines{5}
	cursors := []Cursor{New(0, 4), NewMain(0, 5)}

	got := MoveCursors(cursors, Right, lines)
	if len(got) != 1 {
		t.Fatalf("expected cursors to merge, got %v", got)
	}
	if !got[0].IsMain() || got[0].Position() != (Position{0, 5}) {
		t.Errorf("survivor = %v, want main at 0:5", got[0])
	}
}

func TestMoveCursorsDropsSecondaryAtBoundary(t *testing.T) {
	lines := testLines{2, 2}
	cursors := []Cursor{New(0, 0), NewMain(1, 1)}

	got := MoveCursors(cursors, LeftWrap, lines)
	if len(got) != 1 || got[0].Position() != (Position{1, 0}) {
		t.Errorf("MoveCursors() = %v", got)
	}
}

func TestMarks(t *testing.T) {
	c := NewMain(1, 4).PlacePointMark().MoveTo(0, 2)
	start, end, ok := c.Bounds()
	if !ok || start != (Position{0, 2}) || end != (Position{1, 4}) {
		t.Errorf("Bounds() = %v, %v, %v", start, end, ok)
	}

	flipped := c.FlipMark()
	if flipped.Position() != (Position{1, 4}) {
		t.Errorf("FlipMark() point = %v", flipped.Position())
	}
	if mark, _ := flipped.Mark(); mark != (Position{0, 2}) {
		t.Errorf("FlipMark() mark = %v", mark)
	}

	if _, ok := c.RemoveMark().Mark(); ok {
		t.Error("RemoveMark() left a mark")
	}
	if got := New(0, 0).FlipMark(); got != New(0, 0) {
		t.Error("FlipMark() without a mark changed the cursor")
	}

	states := map[MarkState]Cursor{
		MarkLine: c.PlaceLineMark(),
		MarkBox:  c.PlaceBoxMark(),
		MarkFile: c.PlaceFileMark(),
	}
	for want, got := range states {
		if got.MarkState() != want {
			t.Errorf("MarkState() = %v, want %v", got.MarkState(), want)
		}
	}
}

func TestContains(t *testing.T) {
	box := New(1, 2).PlaceBoxMark().MoveTo(3, 5)
	if !box.Contains(Position{2, 3}) || box.Contains(Position{2, 6}) {
		t.Error("box selection bounds are wrong")
	}
	point := New(0, 1).PlacePointMark().MoveTo(0, 4)
	if !point.Contains(Position{0, 1}) || point.Contains(Position{0, 4}) {
		t.Error("point selection bounds are wrong")
	}
}

func TestCursorListOperations(t *testing.T) {
	cursors := []Cursor{NewMain(1, 0)}
	cursors = AddCursor(cursors, Position{0, 3})
	cursors = AddCursor(cursors, Position{2, 0})
	cursors = AddCursor(cursors, Position{2, 0})
	if len(cursors) != 3 {
		t.Fatalf("AddCursor() produced %v", cursors)
	}
	if cursors[0].Position() != (Position{0, 3}) {
		t.Errorf("AddCursor() did not keep order: %v", cursors)
	}

	if _, err := RemoveCursor(cursors, 1); !errors.Is(err, ErrRemoveMain) {
		t.Errorf("RemoveCursor(main) error = %v", err)
	}
	if _, err := RemoveCursor(cursors, 7); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("RemoveCursor(7) error = %v", err)
	}

	cursors, err := ChangeMainCursor(cursors, 2)
	if err != nil {
		t.Fatal(err)
	}
	if i, _ := MainIndex(cursors); i != 2 {
		t.Errorf("MainIndex() = %d, want 2", i)
	}
	cursors, err = RemoveCursor(cursors, 1)
	if err != nil || len(cursors) != 2 {
		t.Errorf("RemoveCursor(1) = %v, %v", cursors, err)
	}
	if _, err := MainIndex([]Cursor{New(0, 0)}); !errors.Is(err, ErrNoMainCursor) {
		t.Errorf("MainIndex() error = %v", err)
	}
}

func TestParseDirection(t *testing.T) {
	for name, want := range directionNames {
		got, err := ParseDirection(name)
		if err != nil || got != want {
			t.Errorf("ParseDirection(%q) = %v, %v", name, got, err)
		}
		if got.String() != name {
			t.Errorf("String() = %q, want %q", got.String(), name)
		}
	}
	if _, err := ParseDirection("sideways"); !errors.Is(err, ErrUnknownDirection) {
		t.Errorf("ParseDirection(sideways) error = %v", err)
	}
}

func TestTransformOffset(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		edit   Edit
		sticky bool
		want   int
	}{
		{"insert before", 10, Edit{Start: 2, End: 2, NewLen: 3}, false, 13},
		{"insert at, moving", 10, Edit{Start: 10, End: 10, NewLen: 3}, false, 13},
		{"insert at, sticky", 10, Edit{Start: 10, End: 10, NewLen: 3}, true, 10},
		{"insert after", 10, Edit{Start: 12, End: 12, NewLen: 3}, false, 10},
		{"delete before", 10, Edit{Start: 2, End: 5}, false, 7},
		{"delete spanning", 10, Edit{Start: 8, End: 12}, false, 8},
		{"delete starting at", 10, Edit{Start: 10, End: 12}, false, 10},
		{"replace spanning", 10, Edit{Start: 8, End: 12, NewLen: 1}, false, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TransformOffset(tt.offset, tt.edit, tt.sticky); got != tt.want {
				t.Errorf("TransformOffset() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMoveCursorsInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := testLines(rapid.SliceOfN(rapid.IntRange(0, 8), 1, 6).Draw(t, "lines"))
		n := rapid.IntRange(1, 6).Draw(t, "cursors")
		mainAt := rapid.IntRange(0, n-1).Draw(t, "main")

		var cursors []Cursor
		for i := 0; i < n; i++ {
			line := rapid.IntRange(0, len(lines)-1).Draw(t, "line")
			col := rapid.IntRange(0, lines[line]).Draw(t, "col")
			c := New(line, col)
			if i == mainAt {
				c = c.SetMain(true)
			}
			cursors = append(cursors, c)
		}
		cursors = Normalize(cursors)

		for step := 0; step < 10; step++ {
			d := Direction(rapid.IntRange(int(Up), int(FileEnd)).Draw(t, "dir"))
			cursors = MoveCursors(cursors, d, lines)

			mains := 0
			for i, c := range cursors {
				if c.IsMain() {
					mains++
				}
				if i > 0 && !cursors[i-1].Position().Less(c.Position()) {
					t.Fatalf("cursors out of order or duplicated: %v", cursors)
				}
				if c.Column() > lines[c.Line()] {
					t.Fatalf("cursor %v past end of line", c)
				}
			}
			if mains != 1 {
				t.Fatalf("expected exactly one main cursor, got %d in %v", mains, cursors)
			}
		}
	})
}
