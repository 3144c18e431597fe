package broker

import "errors"

var (
	// ErrClosed is returned by a Client once the broker has stopped or the
	// client's slot has been freed.
	ErrClosed = errors.New("broker closed")
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("broker already running")
)
