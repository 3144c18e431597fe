package table

import "errors"

var (
	// ErrBufferNotFound is returned when no open buffer has the given name.
	ErrBufferNotFound = errors.New("buffer not found")
	// ErrNameInUse is returned when a name already belongs to an open buffer.
	ErrNameInUse = errors.New("buffer name in use")
	// ErrStaleRef is returned when a Ref's slot was closed or reissued.
	ErrStaleRef = errors.New("stale buffer reference")
)
