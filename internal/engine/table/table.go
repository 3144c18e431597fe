package table

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/koru-editor/koru/internal/engine/buffer"
	"github.com/koru-editor/koru/internal/logging"
)

// Ref is a buffer handle together with the table slot it came from.
type Ref struct {
	Index  int
	Handle buffer.Handle
}

type entry struct {
	name string
	// path is the canonical file path, empty for in-memory buffers.
	path   string
	handle buffer.Handle
}

// Option configures a Table.
type Option func(*Table)

// WithBufferOptions sets the options every new buffer is created with.
func WithBufferOptions(opts ...buffer.Option) Option {
	return func(t *Table) {
		t.bufferOpts = append(t.bufferOpts, opts...)
	}
}

// WithLogger sets the table's logger.
func WithLogger(l *logging.Logger) Option {
	return func(t *Table) {
		t.logger = l
	}
}

// Table owns the open buffers. An index is either occupied and named in the
// name map, or on the free list with a nil slot. File buffers are also
// indexed by path, which survives renames.
type Table struct {
	mu    sync.RWMutex
	slots []*entry
	free  []int
	names map[string]int
	paths map[string]int

	bufferOpts []buffer.Option
	logger     *logging.Logger
}

// New creates an empty table.
func New(opts ...Option) *Table {
	t := &Table{
		names:  make(map[string]int),
		paths:  make(map[string]int),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Open returns the buffer for path, reading the file if it is not open yet.
// An already open file yields its existing Ref, whatever its name.
func (t *Table) Open(path string) (Ref, error) {
	canonical, err := buffer.Canonicalize(path)
	if err != nil {
		return Ref{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if i, ok := t.paths[canonical]; ok {
		return Ref{Index: i, Handle: t.slots[i].handle}, nil
	}
	if _, ok := t.names[canonical]; ok {
		return Ref{}, fmt.Errorf("%w: %s", ErrNameInUse, canonical)
	}

	b, err := buffer.Open(canonical, t.bufferOpts...)
	if err != nil {
		return Ref{}, err
	}
	ref := t.insert(canonical, canonical, b)
	t.logger.Debugf("opened %s in slot %d", canonical, ref.Index)
	return ref, nil
}

// Create adds an in-memory buffer holding contents.
func (t *Table) Create(name, contents string) (Ref, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.names[name]; ok {
		return Ref{}, fmt.Errorf("%w: %s", ErrNameInUse, name)
	}
	ref := t.insert(name, "", buffer.New(name, contents, t.bufferOpts...))
	t.logger.Debugf("created %s in slot %d", name, ref.Index)
	return ref, nil
}

// insert stores b in the oldest free slot or a new one. Callers hold mu.
func (t *Table) insert(name, path string, b *buffer.TextBuffer) Ref {
	e := &entry{name: name, path: path, handle: buffer.NewHandle(b)}

	var i int
	if len(t.free) > 0 {
		i = t.free[0]
		t.free = t.free[1:]
		t.slots[i] = e
	} else {
		i = len(t.slots)
		t.slots = append(t.slots, e)
	}
	t.names[name] = i
	if path != "" {
		t.paths[path] = i
	}
	return Ref{Index: i, Handle: e.handle}
}

// Get resolves name to its buffer.
func (t *Table) Get(name string) (Ref, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, ok := t.names[name]
	if !ok {
		return Ref{}, fmt.Errorf("%w: %s", ErrBufferNotFound, name)
	}
	return Ref{Index: i, Handle: t.slots[i].handle}, nil
}

// Close removes the buffer from the table and frees its slot. The buffer
// itself remains reachable through outstanding handles.
func (t *Table) Close(ref Ref) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.live(ref) {
		return ErrStaleRef
	}
	e := t.slots[ref.Index]
	delete(t.names, e.name)
	if e.path != "" {
		delete(t.paths, e.path)
	}
	t.slots[ref.Index] = nil
	t.free = append(t.free, ref.Index)
	t.logger.Debugf("closed %s, slot %d free", e.name, ref.Index)
	return nil
}

// Live reports whether ref still names an open buffer.
func (t *Table) Live(ref Ref) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.live(ref)
}

func (t *Table) live(ref Ref) bool {
	if ref.Index < 0 || ref.Index >= len(t.slots) {
		return false
	}
	e := t.slots[ref.Index]
	return e != nil && e.handle.Same(ref.Handle)
}

// Rename changes a buffer's name in the table and in the buffer itself. It
// also picks up a path the buffer was saved under since it was opened.
func (t *Table) Rename(ctx context.Context, oldName, newName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.names[oldName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBufferNotFound, oldName)
	}
	if j, ok := t.names[newName]; ok && j != i {
		return fmt.Errorf("%w: %s", ErrNameInUse, newName)
	}

	e := t.slots[i]
	var path string
	err := e.handle.With(ctx, func(b *buffer.TextBuffer) error {
		b.SetName(newName)
		path = b.Path()
		return nil
	})
	if err != nil {
		return err
	}
	delete(t.names, oldName)
	t.names[newName] = i
	e.name = newName
	if path != e.path {
		if e.path != "" {
			delete(t.paths, e.path)
		}
		if path != "" {
			t.paths[path] = i
		}
		e.path = path
	}
	return nil
}

// Name returns the table name of the buffer in ref's slot.
func (t *Table) Name(ref Ref) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if !t.live(ref) {
		return "", ErrStaleRef
	}
	return t.slots[ref.Index].name, nil
}

// Len returns the number of open buffers.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.names)
}

// Names returns the names of the open buffers in sorted order.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.names))
	for name := range t.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
