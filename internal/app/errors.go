package app

import (
	"errors"
	"fmt"

	"github.com/koru-editor/koru/internal/broker"
)

// Application errors.
var (
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("application already running")

	// ErrNoSession indicates the broker could not start a session.
	ErrNoSession = errors.New("no session available")
)

// InitError reports a component that failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return "init " + e.Component + ": " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// ConnectError reports a reply Connect did not expect.
type ConnectError struct {
	Got broker.Message
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect: unexpected %s", e.Got)
}
