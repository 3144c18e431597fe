package buffer

import (
	"errors"
	"fmt"
)

// Errors returned by buffer operations.
var (
	// ErrCursorIndexOutOfRange indicates a cursor index outside the cursor list.
	ErrCursorIndexOutOfRange = errors.New("cursor index out of range")

	// ErrNoMark indicates a region operation on a cursor without a mark.
	ErrNoMark = errors.New("no mark set")

	// ErrNoPath indicates Save on a buffer that has no backing file.
	ErrNoPath = errors.New("buffer has no file")
)

// PathError records a failed file operation on a buffer.
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}
