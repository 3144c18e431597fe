package buffer

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/koru-editor/koru/internal/engine/cursor"
	"github.com/koru-editor/koru/internal/engine/undo"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestBuffer(text string) *TextBuffer {
	return New("test", text, WithClock(func() time.Time { return testEpoch }))
}

func pos(line, col int) cursor.Position {
	return cursor.Position{Line: line, Column: col}
}

func TestNewNormalizes(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"", "\n"},
		{"abc", "abc\n"},
		{"abc\n", "abc\n"},
		{"a\r\nb\rc", "a\nb\nc\n"},
	}
	for _, tt := range tests {
		if got := New("x", tt.input).Text(); got != tt.want {
			t.Errorf("New(%q).Text() = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestInsert(t *testing.T) {
	b := newTestBuffer("hello\n")
	cursors, err := b.Insert(" world", 0, []cursor.Cursor{cursor.NewMain(0, 5)})
	if err != nil {
		t.Fatal(err)
	}
	if b.Text() != "hello world\n" {
		t.Errorf("Text() = %q", b.Text())
	}
	if cursors[0].Position() != pos(0, 11) {
		t.Errorf("cursor = %v, want 0:11", cursors[0].Position())
	}
	if !b.Modified() {
		t.Error("buffer should be modified")
	}
}

func TestInsertNewlineMovesCursorDown(t *testing.T) {
	b := newTestBuffer("ab\n")
	cursors, _ := b.Insert("\n", 0, []cursor.Cursor{cursor.NewMain(0, 1)})
	if b.Text() != "a\nb\n" || cursors[0].Position() != pos(1, 0) {
		t.Errorf("Text() = %q, cursor = %v", b.Text(), cursors[0].Position())
	}
}

func TestMultiCursorInsert(t *testing.T) {
	b := newTestBuffer("ab\ncd\n")
	cursors := []cursor.Cursor{cursor.NewMain(0, 1), cursor.New(1, 1)}

	cursors, _ = b.Insert("X", 0, cursors)
	if cursors[1].Position() != pos(1, 1) {
		t.Fatalf("cursor on next line moved to %v", cursors[1].Position())
	}
	cursors, _ = b.Insert("X", 1, cursors)

	if b.Text() != "aXb\ncXd\n" {
		t.Errorf("Text() = %q", b.Text())
	}
	if cursors[0].Position() != pos(0, 2) || cursors[1].Position() != pos(1, 2) {
		t.Errorf("cursors = %v", cursors)
	}
}

func TestInsertShiftsLaterCursorsOnSameLine(t *testing.T) {
	b := newTestBuffer("abcdef\n")
	cursors := []cursor.Cursor{cursor.NewMain(0, 1), cursor.New(0, 4)}
	cursors, _ = b.Insert("123", 0, cursors)
	if cursors[1].Position() != pos(0, 7) {
		t.Errorf("later cursor = %v, want 0:7", cursors[1].Position())
	}
}

func TestDeleteBack(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		at     cursor.Position
		want   string
		cursor cursor.Position
	}{
		{"multibyte", "héllo\n", pos(0, 2), "hllo\n", pos(0, 1)},
		{"start of file", "abc\n", pos(0, 0), "abc\n", pos(0, 0)},
		{"joins lines", "ab\ncd\n", pos(1, 0), "abcd\n", pos(0, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuffer(tt.text)
			cursors, err := b.DeleteBack(0, []cursor.Cursor{cursor.NewMain(tt.at.Line, tt.at.Column)})
			if err != nil {
				t.Fatal(err)
			}
			if b.Text() != tt.want {
				t.Errorf("Text() = %q, want %q", b.Text(), tt.want)
			}
			if cursors[0].Position() != tt.cursor {
				t.Errorf("cursor = %v, want %v", cursors[0].Position(), tt.cursor)
			}
		})
	}
}

func TestDeleteForward(t *testing.T) {
	tests := []struct {
		name string
		text string
		at   cursor.Position
		want string
	}{
		{"middle", "abc\n", pos(0, 1), "ac\n"},
		{"joins lines", "ab\ncd\n", pos(0, 2), "abcd\n"},
		{"keeps final newline", "ab\n", pos(0, 2), "ab\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuffer(tt.text)
			if _, err := b.DeleteForward(0, []cursor.Cursor{cursor.NewMain(tt.at.Line, tt.at.Column)}); err != nil {
				t.Fatal(err)
			}
			if b.Text() != tt.want {
				t.Errorf("Text() = %q, want %q", b.Text(), tt.want)
			}
		})
	}
}

func TestDeleteRegion(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		cursor cursor.Cursor
		want   string
		at     cursor.Position
	}{
		{
			name:   "point",
			text:   "hello world\n",
			cursor: cursor.NewMain(0, 0).PlacePointMark().MoveTo(0, 6),
			want:   "world\n",
			at:     pos(0, 0),
		},
		{
			name:   "point backwards",
			text:   "hello world\n",
			cursor: cursor.NewMain(0, 6).PlacePointMark().MoveTo(0, 0),
			want:   "world\n",
			at:     pos(0, 0),
		},
		{
			name:   "lines",
			text:   "a\nb\nc\n",
			cursor: cursor.NewMain(0, 0).PlaceLineMark().MoveTo(1, 0),
			want:   "c\n",
			at:     pos(0, 0),
		},
		{
			name:   "lines through the end",
			text:   "a\nb\nc\n",
			cursor: cursor.NewMain(1, 0).PlaceLineMark().MoveTo(2, 1),
			want:   "a\n",
			at:     pos(0, 1),
		},
		{
			name:   "box",
			text:   "abcd\nefgh\nijkl\n",
			cursor: cursor.NewMain(0, 1).PlaceBoxMark().MoveTo(2, 3),
			want:   "ad\neh\nil\n",
			at:     pos(0, 1),
		},
		{
			name:   "file",
			text:   "abc\ndef\n",
			cursor: cursor.NewMain(1, 1).PlaceFileMark(),
			want:   "\n",
			at:     pos(0, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuffer(tt.text)
			cursors, err := b.DeleteRegion(0, []cursor.Cursor{tt.cursor})
			if err != nil {
				t.Fatal(err)
			}
			if b.Text() != tt.want {
				t.Errorf("Text() = %q, want %q", b.Text(), tt.want)
			}
			if cursors[0].Position() != tt.at {
				t.Errorf("cursor = %v, want %v", cursors[0].Position(), tt.at)
			}
			if _, ok := cursors[0].Mark(); ok {
				t.Error("mark should be cleared")
			}

			if _, err := b.Undo(cursors); err != nil {
				t.Fatal(err)
			}
			if b.Text() != tt.text {
				t.Errorf("undo gave %q, want %q", b.Text(), tt.text)
			}
		})
	}
}

func TestDeleteRegionWithoutMark(t *testing.T) {
	b := newTestBuffer("abc\n")
	if _, err := b.DeleteRegion(0, []cursor.Cursor{cursor.NewMain(0, 1)}); !errors.Is(err, ErrNoMark) {
		t.Errorf("DeleteRegion() error = %v, want ErrNoMark", err)
	}
}

func TestReplace(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		cursor cursor.Cursor
		with   string
		want   string
		at     cursor.Position
	}{
		{"overwrite", "hello\n", cursor.NewMain(0, 1), "EY", "hEYlo\n", pos(0, 3)},
		{"overwrite stops at line end", "ab\n", cursor.NewMain(0, 1), "XYZ", "aXYZ\n", pos(0, 4)},
		{"region", "hello world\n", cursor.NewMain(0, 6).PlacePointMark().MoveTo(0, 11), "there", "hello there\n", pos(0, 11)},
		{"box", "abcd\nefgh\n", cursor.NewMain(0, 1).PlaceBoxMark().MoveTo(1, 3), "-", "a-d\neh\n", pos(0, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBuffer(tt.text)
			cursors, err := b.Replace(tt.with, 0, []cursor.Cursor{tt.cursor})
			if err != nil {
				t.Fatal(err)
			}
			if b.Text() != tt.want {
				t.Errorf("Text() = %q, want %q", b.Text(), tt.want)
			}
			if cursors[0].Position() != tt.at {
				t.Errorf("cursor = %v, want %v", cursors[0].Position(), tt.at)
			}
			if _, err := b.Undo(cursors); err != nil {
				t.Fatal(err)
			}
			if b.Text() != tt.text {
				t.Errorf("undo gave %q, want %q", b.Text(), tt.text)
			}
		})
	}
}

func TestCursorIndexOutOfRange(t *testing.T) {
	b := newTestBuffer("abc\n")
	cursors := []cursor.Cursor{cursor.NewMain(0, 0)}
	ops := map[string]func() error{
		"insert":         func() error { _, err := b.Insert("x", 3, cursors); return err },
		"delete back":    func() error { _, err := b.DeleteBack(-1, cursors); return err },
		"delete forward": func() error { _, err := b.DeleteForward(1, cursors); return err },
		"delete region":  func() error { _, err := b.DeleteRegion(1, cursors); return err },
		"replace":        func() error { _, err := b.Replace("x", 1, cursors); return err },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrCursorIndexOutOfRange) {
			t.Errorf("%s error = %v, want ErrCursorIndexOutOfRange", name, err)
		}
	}
}

func TestUndoRedoMovesMainCursor(t *testing.T) {
	b := newTestBuffer("abc\n")
	cursors := []cursor.Cursor{cursor.NewMain(0, 3)}
	cursors, _ = b.Insert("X", 0, cursors)
	cursors, _ = b.Insert("Y", 0, cursors)

	cursors, err := b.Undo(cursors)
	if err != nil {
		t.Fatal(err)
	}
	if b.Text() != "abc\n" || cursors[0].Position() != pos(0, 3) {
		t.Errorf("after undo Text() = %q, cursor %v", b.Text(), cursors[0].Position())
	}
	if _, err := b.Undo(cursors); !errors.Is(err, undo.ErrNothingToUndo) {
		t.Errorf("typed run should be a single undo step, got %v", err)
	}

	cursors, err = b.Redo(cursors)
	if err != nil {
		t.Fatal(err)
	}
	if b.Text() != "abcXY\n" || cursors[0].Position() != pos(0, 5) {
		t.Errorf("after redo Text() = %q, cursor %v", b.Text(), cursors[0].Position())
	}
}

func TestTransactionGroupsMultiCursorEdit(t *testing.T) {
	b := newTestBuffer("a\nb\n")
	cursors := []cursor.Cursor{cursor.NewMain(0, 1), cursor.New(1, 1)}

	b.StartTransaction()
	for i := len(cursors) - 1; i >= 0; i-- {
		cursors, _ = b.Insert("!", i, cursors)
	}
	if err := b.EndTransaction(); err != nil {
		t.Fatal(err)
	}
	if b.Text() != "a!\nb!\n" {
		t.Fatalf("Text() = %q", b.Text())
	}

	cursors, _ = b.Undo(cursors)
	if b.Text() != "a\nb\n" {
		t.Errorf("undo gave %q", b.Text())
	}
	if _, err := b.Undo(cursors); !errors.Is(err, undo.ErrNothingToUndo) {
		t.Errorf("transaction should undo in one step, got %v", err)
	}
}

func TestRedoBranch(t *testing.T) {
	clock := testEpoch
	b := New("test", "\n", WithClock(func() time.Time { return clock }))
	cursors := []cursor.Cursor{cursor.NewMain(0, 0)}

	cursors, _ = b.Insert("one", 0, cursors)
	cursors, _ = b.Undo(cursors)
	clock = clock.Add(2 * time.Second)
	cursors, _ = b.Insert("two", 0, cursors)
	cursors, _ = b.Undo(cursors)

	if n := b.RedoBranchLen(); n != 2 {
		t.Fatalf("RedoBranchLen() = %d, want 2", n)
	}
	cursors, err := b.RedoBranch(0, cursors)
	if err != nil {
		t.Fatal(err)
	}
	if b.Text() != "one\n" {
		t.Errorf("branch 0 gave %q", b.Text())
	}
	cursors, _ = b.Undo(cursors)
	if _, err := b.Redo(cursors); err != nil {
		t.Fatal(err)
	}
	if b.Text() != "two\n" {
		t.Errorf("newest branch gave %q", b.Text())
	}
}

func TestUndoSnapshotRestore(t *testing.T) {
	b := newTestBuffer("abc\n")
	cursors := []cursor.Cursor{cursor.NewMain(0, 0)}
	cursors, _ = b.Insert("X", 0, cursors)

	other := newTestBuffer(b.Text())
	if err := other.RestoreUndo(b.UndoSnapshot()); err != nil {
		t.Fatal(err)
	}
	if _, err := other.Undo([]cursor.Cursor{cursor.NewMain(0, 0)}); err != nil {
		t.Fatal(err)
	}
	if other.Text() != "abc\n" {
		t.Errorf("restored undo gave %q", other.Text())
	}
}

func TestClampCursors(t *testing.T) {
	b := newTestBuffer("ab\n")
	got := b.ClampCursors([]cursor.Cursor{cursor.NewMain(4, 9), cursor.New(0, 1)})
	if len(got) != 2 || got[1].Position() != pos(0, 2) || !got[1].IsMain() {
		t.Errorf("ClampCursors() = %v", got)
	}
}

func TestOpenSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(path, []byte("one\ntwo"), 0o600); err != nil {
		t.Fatal(err)
	}

	b, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	canonical, _ := Canonicalize(path)
	if b.Path() != canonical || b.Name() != canonical {
		t.Errorf("Path() = %q, Name() = %q, want %q", b.Path(), b.Name(), canonical)
	}
	if b.Text() != "one\ntwo\n" {
		t.Errorf("Text() = %q", b.Text())
	}

	if _, err := b.Insert("zero\n", 0, []cursor.Cursor{cursor.NewMain(0, 0)}); err != nil {
		t.Fatal(err)
	}
	if err := b.Save(); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "zero\none\ntwo\n" {
		t.Errorf("saved %q", data)
	}
	if b.Modified() {
		t.Error("Save() should clear the modified flag")
	}

	other := filepath.Join(dir, "copy.txt")
	if err := b.SaveAs(other); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(b.Path(), "copy.txt") {
		t.Errorf("SaveAs() left Path() = %q", b.Path())
	}
	if data, _ := os.ReadFile(other); string(data) != "zero\none\ntwo\n" {
		t.Errorf("SaveAs() wrote %q", data)
	}
}

func TestSaveAsFailureKeepsPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(path, []byte("keep\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	b, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	before, name := b.Path(), b.Name()

	target := filepath.Join(dir, "sub")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatal(err)
	}
	var pathErr *PathError
	if err := b.SaveAs(target); !errors.As(err, &pathErr) {
		t.Fatalf("SaveAs(directory) error = %v, want *PathError", err)
	}
	if b.Path() != before || b.Name() != name {
		t.Errorf("after failed SaveAs() Path() = %q, Name() = %q, want %q", b.Path(), b.Name(), before)
	}
}

func TestReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, []byte("alpha\nbeta\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	b, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("a\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cursors, err := b.Reload([]cursor.Cursor{cursor.NewMain(1, 3)})
	if err != nil {
		t.Fatal(err)
	}
	if b.Text() != "a\n" || b.Modified() {
		t.Errorf("after Reload() Text() = %q, Modified() = %v", b.Text(), b.Modified())
	}
	if p := cursors[0].Position(); p.Line != 0 || p.Column > b.LineLength(0) {
		t.Errorf("cursor left outside the text at %v", p)
	}

	if _, err := b.Undo(cursors); err != nil {
		t.Fatal(err)
	}
	if b.Text() != "alpha\nbeta\n" {
		t.Errorf("Undo() after Reload() = %q", b.Text())
	}

	if _, err := newTestBuffer("x").Reload(nil); !errors.Is(err, ErrNoPath) {
		t.Errorf("Reload() on scratch buffer error = %v", err)
	}
}

func TestChangedOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(path, []byte("a\r\nb"), 0o600); err != nil {
		t.Fatal(err)
	}
	b, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if changed, err := b.ChangedOnDisk(); err != nil || changed {
		t.Errorf("ChangedOnDisk() after Open() = %v, %v", changed, err)
	}

	if _, err := b.Insert("x", 0, []cursor.Cursor{cursor.NewMain(0, 0)}); err != nil {
		t.Fatal(err)
	}
	if err := b.Save(); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Insert("y", 0, []cursor.Cursor{cursor.NewMain(0, 0)}); err != nil {
		t.Fatal(err)
	}
	if changed, err := b.ChangedOnDisk(); err != nil || changed {
		t.Errorf("ChangedOnDisk() after own Save() = %v, %v", changed, err)
	}

	if err := os.WriteFile(path, []byte("other\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if changed, err := b.ChangedOnDisk(); err != nil || !changed {
		t.Errorf("ChangedOnDisk() after outside write = %v, %v", changed, err)
	}
	if _, err := b.Reload([]cursor.Cursor{cursor.NewMain(0, 0)}); err != nil {
		t.Fatal(err)
	}
	if changed, _ := b.ChangedOnDisk(); changed {
		t.Error("ChangedOnDisk() after Reload() = true")
	}

	if _, err := newTestBuffer("x").ChangedOnDisk(); !errors.Is(err, ErrNoPath) {
		t.Errorf("ChangedOnDisk() on scratch buffer error = %v", err)
	}
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.txt"))
	var pathErr *PathError
	if !errors.As(err, &pathErr) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Open(missing) error = %v", err)
	}
	if err := newTestBuffer("x").Save(); !errors.Is(err, ErrNoPath) {
		t.Errorf("Save() on scratch buffer error = %v", err)
	}
}

func TestHandleSerializesAccess(t *testing.T) {
	h := NewHandle(newTestBuffer("abc\n"))
	clone := h
	if !h.Same(clone) || !h.Valid() {
		t.Fatal("copied handle should share the buffer")
	}

	_, unlock, err := h.Lock(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, _, err := clone.Lock(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("second Lock() error = %v, want deadline exceeded", err)
	}
	unlock()

	err = clone.With(context.Background(), func(b *TextBuffer) error {
		_, err := b.Insert("!", 0, []cursor.Cursor{cursor.NewMain(0, 3)})
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = h.With(context.Background(), func(b *TextBuffer) error {
		if b.Text() != "abc!\n" {
			t.Errorf("edit through clone not visible: %q", b.Text())
		}
		return nil
	})
}

func TestBufferUndoRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		clock := testEpoch
		original := rapid.StringMatching(`([a-c]{0,4}\n){1,4}`).Draw(t, "text")
		b := New("prop", original, WithClock(func() time.Time { return clock }))
		cursors := []cursor.Cursor{cursor.NewMain(0, 0)}

		steps := rapid.IntRange(1, 25).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if rapid.Bool().Draw(t, "pause") {
				clock = clock.Add(2 * time.Second)
			}
			line := rapid.IntRange(0, b.LineCount()-1).Draw(t, "line")
			col := rapid.IntRange(0, b.LineLength(line)).Draw(t, "col")
			cursors = []cursor.Cursor{cursor.NewMain(line, col)}

			var err error
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				cursors, err = b.Insert(rapid.SampledFrom([]string{"x", "é", "\n", "yz"}).Draw(t, "text"), 0, cursors)
			case 1:
				cursors, err = b.DeleteBack(0, cursors)
			case 2:
				cursors, err = b.DeleteForward(0, cursors)
			case 3:
				cursors, err = b.Replace(rapid.SampledFrom([]string{"Q", "", "RS"}).Draw(t, "with"), 0, cursors)
			}
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasSuffix(b.Text(), "\n") {
				t.Fatalf("lost trailing newline: %q", b.Text())
			}
		}

		final := b.Text()
		undone := 0
		for {
			var err error
			cursors, err = b.Undo(cursors)
			if errors.Is(err, undo.ErrNothingToUndo) {
				break
			}
			undone++
		}
		if b.Text() != original {
			t.Fatalf("undo gave %q, want %q", b.Text(), original)
		}
		for i := 0; i < undone; i++ {
			var err error
			if cursors, err = b.Redo(cursors); err != nil {
				t.Fatal(err)
			}
		}
		if b.Text() != final {
			t.Fatalf("redo gave %q, want %q", b.Text(), final)
		}
	})
}
