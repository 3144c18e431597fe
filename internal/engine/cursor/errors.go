package cursor

import "errors"

// Errors returned by cursor list operations.
var (
	// ErrIndexOutOfRange indicates a cursor index outside the list.
	ErrIndexOutOfRange = errors.New("cursor index out of range")

	// ErrRemoveMain indicates an attempt to remove the main cursor.
	ErrRemoveMain = errors.New("cannot remove the main cursor")

	// ErrNoMainCursor indicates a cursor list without a main cursor.
	ErrNoMainCursor = errors.New("no main cursor")

	// ErrUnknownDirection indicates a direction name that does not parse.
	ErrUnknownDirection = errors.New("unknown direction")
)
