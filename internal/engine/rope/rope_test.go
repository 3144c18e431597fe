package rope

import (
	"strings"
	"testing"
	"testing/quick"
)

func TestNew(t *testing.T) {
	r := New()
	if r.Len() != 0 {
		t.Errorf("New rope should have length 0, got %d", r.Len())
	}
	if !r.IsEmpty() {
		t.Error("New rope should be empty")
	}
	if r.LineCount() != 1 {
		t.Errorf("New rope should have 1 line, got %d", r.LineCount())
	}
}

func TestFromString(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"single char", "a"},
		{"with newline", "hello\nworld"},
		{"unicode", "hello 世界 🌍"},
		{"long string", strings.Repeat("abcdefghij", 100)},
		{"very long lines", strings.Repeat("some text here\n", 2000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.input)
			if r.String() != tt.input {
				t.Errorf("String() = %q, want %q", r.String(), tt.input)
			}
			if r.Len() != len(tt.input) {
				t.Errorf("Len() = %d, want %d", r.Len(), len(tt.input))
			}
			if r.NewlineCount() != strings.Count(tt.input, "\n") {
				t.Errorf("NewlineCount() = %d, want %d", r.NewlineCount(), strings.Count(tt.input, "\n"))
			}
		})
	}
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name     string
		initial  string
		offset   int
		text     string
		expected string
	}{
		{"into empty", "", 0, "hello", "hello"},
		{"at start", "world", 0, "hello ", "hello world"},
		{"at end", "hello", 5, " world", "hello world"},
		{"in middle", "helo", 2, "l", "hello"},
		{"empty text", "hello", 2, "", "hello"},
		{"past end", "abc", 10, "d", "abcd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.initial).Insert(tt.offset, tt.text)
			if r.String() != tt.expected {
				t.Errorf("Insert() = %q, want %q", r.String(), tt.expected)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name       string
		initial    string
		start, end int
		expected   string
	}{
		{"from start", "hello world", 0, 6, "world"},
		{"from end", "hello world", 5, 11, "hello"},
		{"middle", "hello world", 2, 9, "held"},
		{"everything", "hello", 0, 5, ""},
		{"empty range", "hello", 2, 2, "hello"},
		{"clamped end", "hello", 3, 100, "hel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := FromString(tt.initial).Delete(tt.start, tt.end)
			if r.String() != tt.expected {
				t.Errorf("Delete() = %q, want %q", r.String(), tt.expected)
			}
		})
	}
}

func TestReplace(t *testing.T) {
	r := FromString("hello world").Replace(6, 11, "there")
	if r.String() != "hello there" {
		t.Errorf("Replace() = %q, want %q", r.String(), "hello there")
	}
}

func TestSlice(t *testing.T) {
	text := strings.Repeat("0123456789", 200)
	r := FromString(text)

	tests := []struct {
		start, end int
	}{
		{0, 10}, {5, 15}, {250, 900}, {1990, 2000}, {0, 2000}, {100, 100},
	}
	for _, tt := range tests {
		if got, want := r.Slice(tt.start, tt.end), text[tt.start:tt.end]; got != want {
			t.Errorf("Slice(%d, %d) = %q, want %q", tt.start, tt.end, got, want)
		}
	}
}

func TestImmutability(t *testing.T) {
	r1 := FromString("hello")
	r2 := r1.Insert(5, " world")
	if r1.String() != "hello" {
		t.Errorf("original rope modified: %q", r1.String())
	}
	if r2.String() != "hello world" {
		t.Errorf("new rope = %q", r2.String())
	}
}

func TestLargeRopeEdits(t *testing.T) {
	var sb strings.Builder
	r := New()
	for i := 0; i < 3000; i++ {
		line := strings.Repeat("x", i%17) + "\n"
		r = r.Insert(r.Len(), line)
		sb.WriteString(line)
	}
	if r.String() != sb.String() {
		t.Fatal("incremental build differs from reference")
	}
	if r.Height() < 2 {
		t.Errorf("expected a multi-level tree, got height %d", r.Height())
	}

	r = r.Delete(100, 20000)
	want := sb.String()
	want = want[:100] + want[20000:]
	if r.String() != want {
		t.Error("delete across leaves produced wrong text")
	}
}

func TestInsertDeleteProperty(t *testing.T) {
	f := func(base, insert string, at uint16) bool {
		r := FromString(base)
		offset := int(at) % (len(base) + 1)
		for offset > 0 && offset < len(base) && !isUTF8Start(base[offset]) {
			offset--
		}
		inserted := r.Insert(offset, insert)
		if inserted.String() != base[:offset]+insert+base[offset:] {
			return false
		}
		return inserted.Delete(offset, offset+len(insert)).String() == base
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestSplitConcatProperty(t *testing.T) {
	f := func(s string, at uint16) bool {
		r := FromString(s)
		offset := int(at) % (len(s) + 1)
		left, right := r.Split(offset)
		return left.Len()+right.Len() == r.Len() && left.Concat(right).String() == s
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestComputeSummary(t *testing.T) {
	s := ComputeSummary("héllo\nwörld\n")
	if s.Bytes != 14 || s.Chars != 12 || s.Lines != 2 {
		t.Errorf("ComputeSummary() = %+v", s)
	}
	sum := ComputeSummary("ab\n").Add(ComputeSummary("c"))
	if sum.Bytes != 4 || sum.Chars != 4 || sum.Lines != 1 {
		t.Errorf("Add() = %+v", sum)
	}
}
