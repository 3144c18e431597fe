package session

import "errors"

var (
	// ErrUnknownCommand is returned for a command-bar line naming no command.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrMissingArgument is returned when a command needs an argument.
	ErrMissingArgument = errors.New("missing argument")

	// ErrSessionBuffer is returned when closing or renaming one of the
	// session's own buffers.
	ErrSessionBuffer = errors.New("operation not allowed on session buffer")

	// ErrModified is returned when closing a buffer with unsaved changes.
	ErrModified = errors.New("buffer has unsaved changes")

	// ErrReadOnly is returned when editing a buffer whose major mode is
	// read-only.
	ErrReadOnly = errors.New("buffer is read-only")

	// ErrUnknownMark is returned for a mark kind other than point, line,
	// box or file.
	ErrUnknownMark = errors.New("unknown mark kind")

	// ErrPositionOutOfRange is returned for a cursor position outside the
	// buffer.
	ErrPositionOutOfRange = errors.New("position out of range")

	// ErrUnknownMode is returned for a mode name that is not registered.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrModeExists is returned when a minor mode would shadow a major mode.
	ErrModeExists = errors.New("mode name in use")

	// ErrSequenceTooLong is returned when binding more keys than the key
	// buffer holds.
	ErrSequenceTooLong = errors.New("key sequence too long")
)
