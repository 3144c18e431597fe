package buffer

import (
	"time"

	"github.com/koru-editor/koru/internal/engine/undo"
)

// Option is a functional option for configuring a TextBuffer.
type Option func(*options)

type options struct {
	undo []undo.Option
}

// WithEditDelay sets the window within which adjacent edits share an undo step.
func WithEditDelay(d time.Duration) Option {
	return func(o *options) {
		o.undo = append(o.undo, undo.WithEditDelay(d))
	}
}

// WithClock sets the clock used to timestamp undo entries.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.undo = append(o.undo, undo.WithClock(now))
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
