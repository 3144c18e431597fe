package input

// KeyBufferSize is the longest key sequence a KeyBuffer holds.
const KeyBufferSize = 4

// KeyBuffer collects the presses of a pending multi-key binding.
type KeyBuffer struct {
	keys [KeyBufferSize]KeyPress
	n    int
}

// Push appends k. It reports false and leaves the buffer unchanged when
// the buffer is full.
func (b *KeyBuffer) Push(k KeyPress) bool {
	if b.n == KeyBufferSize {
		return false
	}
	b.keys[b.n] = k
	b.n++
	return true
}

// Keys returns a copy of the pending presses.
func (b *KeyBuffer) Keys() []KeyPress {
	return append([]KeyPress(nil), b.keys[:b.n]...)
}

// Len returns the number of pending presses.
func (b *KeyBuffer) Len() int { return b.n }

// Full reports whether another Push would fail.
func (b *KeyBuffer) Full() bool { return b.n == KeyBufferSize }

// Clear drops the pending presses.
func (b *KeyBuffer) Clear() { b.n = 0 }

// String returns the pending presses in Emacs notation.
func (b *KeyBuffer) String() string {
	return SequenceString(b.keys[:b.n])
}
