// Package script defines how the editor calls into user code.
//
// The editor never depends on a particular embedded language. It holds
// Callables, which a runtime such as script/lua produces from its own
// function values, and runs them from named hook points.
package script

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Callable is a procedure supplied by a scripting runtime.
type Callable interface {
	Call(ctx context.Context, args ...any) ([]any, error)
}

// Func adapts a Go function to Callable.
type Func func(ctx context.Context, args ...any) ([]any, error)

// Call implements Callable.
func (f Func) Call(ctx context.Context, args ...any) ([]any, error) {
	return f(ctx, args...)
}

// Hook points.
const (
	HookFileOpen   = "file-open"
	HookGainFocus  = "gain-focus"
	HookBufferSave = "buffer-save"
	HookKey        = "key"
)

var hookPoints = []string{HookFileOpen, HookGainFocus, HookBufferSave, HookKey}

// ErrUnknownHook is returned for a hook name that is not a hook point.
var ErrUnknownHook = errors.New("unknown hook")

// HookError reports one failed hook procedure.
type HookError struct {
	Hook string
	Name string
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("hook %s/%s: %v", e.Hook, e.Name, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// Hooks holds the procedures registered at each hook point, keyed by name.
type Hooks struct {
	mu     sync.RWMutex
	points map[string]map[string]Callable
}

// NewHooks creates an empty registry.
func NewHooks() *Hooks {
	h := &Hooks{points: make(map[string]map[string]Callable, len(hookPoints))}
	for _, p := range hookPoints {
		h.points[p] = make(map[string]Callable)
	}
	return h
}

// Add registers fn under name at hook, replacing any procedure of that name.
func (h *Hooks) Add(hook, name string, fn Callable) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	procs, ok := h.points[hook]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHook, hook)
	}
	procs[name] = fn
	return nil
}

// Remove deletes the procedure called name at hook. It reports whether one
// was registered.
func (h *Hooks) Remove(hook, name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	procs, ok := h.points[hook]
	if !ok {
		return false
	}
	_, found := procs[name]
	delete(procs, name)
	return found
}

// Names returns the procedure names at hook in the order Run calls them.
func (h *Hooks) Names(hook string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.points[hook]))
	for name := range h.points[hook] {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Run calls every procedure at hook in name order. A failing procedure does
// not stop the others; their errors are joined.
func (h *Hooks) Run(ctx context.Context, hook string, args ...any) error {
	h.mu.RLock()
	procs, ok := h.points[hook]
	if !ok {
		h.mu.RUnlock()
		return fmt.Errorf("%w: %s", ErrUnknownHook, hook)
	}
	names := make([]string, 0, len(procs))
	for name := range procs {
		names = append(names, name)
	}
	fns := make(map[string]Callable, len(procs))
	for name, fn := range procs {
		fns[name] = fn
	}
	h.mu.RUnlock()

	slices.Sort(names)
	var errs []error
	for _, name := range names {
		if _, err := fns[name].Call(ctx, args...); err != nil {
			errs = append(errs, &HookError{Hook: hook, Name: name, Err: err})
		}
	}
	return errors.Join(errs...)
}
