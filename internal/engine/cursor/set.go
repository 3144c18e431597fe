package cursor

// MainIndex returns the index of the main cursor.
func MainIndex(cursors []Cursor) (int, error) {
	for i, c := range cursors {
		if c.main {
			return i, nil
		}
	}
	return -1, ErrNoMainCursor
}

// AddCursor inserts a secondary cursor at p, keeping the list sorted.
// A cursor already at p is left alone.
func AddCursor(cursors []Cursor, p Position) []Cursor {
	i := 0
	for i < len(cursors) && cursors[i].real.Less(p) {
		i++
	}
	if i < len(cursors) && cursors[i].real == p {
		return cursors
	}

	out := make([]Cursor, 0, len(cursors)+1)
	out = append(out, cursors[:i]...)
	out = append(out, New(p.Line, p.Column))
	return append(out, cursors[i:]...)
}

// RemoveCursor removes the secondary cursor at index.
func RemoveCursor(cursors []Cursor, index int) ([]Cursor, error) {
	if index < 0 || index >= len(cursors) {
		return cursors, ErrIndexOutOfRange
	}
	if cursors[index].main {
		return cursors, ErrRemoveMain
	}
	out := make([]Cursor, 0, len(cursors)-1)
	out = append(out, cursors[:index]...)
	return append(out, cursors[index+1:]...), nil
}

// ChangeMainCursor makes the cursor at index main and demotes the rest.
func ChangeMainCursor(cursors []Cursor, index int) ([]Cursor, error) {
	if index < 0 || index >= len(cursors) {
		return cursors, ErrIndexOutOfRange
	}
	out := make([]Cursor, len(cursors))
	for i, c := range cursors {
		out[i] = c.SetMain(i == index)
	}
	return out, nil
}
