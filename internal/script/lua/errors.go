package lua

import "errors"

// ErrClosed is returned when the runtime has been closed.
var ErrClosed = errors.New("lua runtime is closed")
