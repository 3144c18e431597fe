package cursor

// Edit describes the byte range [Start, End) replaced by NewLen bytes.
type Edit struct {
	Start  int
	End    int
	NewLen int
}

// TransformOffset updates an offset after an edit.
//
// Transformation rules:
//   - If the edit lies entirely before offset: shift by the edit's delta
//   - If the edit is an insertion exactly at offset: stay when sticky,
//     otherwise move past the inserted text
//   - If the edit starts at or after offset: unchanged
//   - If the edit spans offset: move to the end of the new text
func TransformOffset(offset int, e Edit, sticky bool) int {
	if e.End <= offset && e.Start < offset {
		return offset - (e.End - e.Start) + e.NewLen
	}
	if e.Start == offset && e.Start == e.End {
		if sticky {
			return offset
		}
		return offset + e.NewLen
	}
	if e.Start >= offset {
		return offset
	}
	return e.Start + e.NewLen
}
