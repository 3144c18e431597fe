package buffer

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Handle is a shared reference to a TextBuffer. Copies of a Handle refer to
// the same buffer, and Lock grants one holder at a time.
type Handle struct {
	shared *shared
}

type shared struct {
	sem *semaphore.Weighted
	buf *TextBuffer
}

// NewHandle wraps b.
func NewHandle(b *TextBuffer) Handle {
	return Handle{shared: &shared{sem: semaphore.NewWeighted(1), buf: b}}
}

// Valid reports whether h refers to a buffer.
func (h Handle) Valid() bool {
	return h.shared != nil
}

// Same reports whether h and other refer to the same buffer.
func (h Handle) Same(other Handle) bool {
	return h.shared == other.shared
}

// Lock waits for exclusive access to the buffer. The returned function
// releases it.
func (h Handle) Lock(ctx context.Context) (*TextBuffer, func(), error) {
	if err := h.shared.sem.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}
	return h.shared.buf, func() { h.shared.sem.Release(1) }, nil
}

// With runs fn while holding the buffer.
func (h Handle) With(ctx context.Context, fn func(*TextBuffer) error) error {
	b, unlock, err := h.Lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()
	return fn(b)
}
