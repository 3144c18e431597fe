package lua

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/koru-editor/koru/internal/logging"
)

// ModuleName is the global table scripts use to reach the editor.
const ModuleName = "koru"

// Runtime is a Lua interpreter bound to one Host.
type Runtime struct {
	L      *lua.LState
	host   Host
	logger *logging.Logger
	depth  int
	closed bool
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger for script output and errors.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// New creates a runtime whose koru module drives host.
func New(host Host, opts ...Option) *Runtime {
	r := &Runtime{
		L:      lua.NewState(lua.Options{SkipOpenLibs: true}),
		host:   host,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}

	openSafeLibraries(r.L)
	r.L.SetGlobal("print", r.L.NewFunction(r.luaPrint))
	r.L.SetGlobal(ModuleName, r.L.SetFuncs(r.L.NewTable(), r.module()))
	return r
}

func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// OpenBase installs loaders that read files.
	for _, name := range []string{"dofile", "loadfile", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// DoString runs a chunk of Lua source.
func (r *Runtime) DoString(ctx context.Context, code string) error {
	return r.run(ctx, func() error { return r.L.DoString(code) })
}

// DoFile runs the Lua file at path.
func (r *Runtime) DoFile(ctx context.Context, path string) error {
	return r.run(ctx, func() error { return r.L.DoFile(path) })
}

// Close releases the interpreter.
func (r *Runtime) Close() {
	if r.closed {
		return
	}
	r.L.Close()
	r.closed = true
}

// run executes fn with ctx installed on the interpreter. Nested runs, such
// as a hook that fires while a script is executing, keep the outer context.
func (r *Runtime) run(ctx context.Context, fn func() error) (err error) {
	if r.closed {
		return ErrClosed
	}
	if r.depth == 0 {
		r.L.SetContext(ctx)
		defer r.L.RemoveContext()
	}
	r.depth++
	defer func() { r.depth-- }()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("lua panic: %v", p)
		}
	}()
	return fn()
}

// Function is a Lua function usable wherever the editor takes a
// script.Callable.
type Function struct {
	runtime *Runtime
	fn      *lua.LFunction
}

// Call invokes the function with args converted to Lua values and returns
// its results converted back.
func (f *Function) Call(ctx context.Context, args ...any) ([]any, error) {
	r := f.runtime
	var results []any
	err := r.run(ctx, func() error {
		top := r.L.GetTop()
		r.L.Push(f.fn)
		for _, a := range args {
			r.L.Push(r.toLua(a))
		}
		if err := r.L.PCall(len(args), lua.MultRet, nil); err != nil {
			r.L.SetTop(top)
			return err
		}

		n := r.L.GetTop() - top
		results = make([]any, n)
		for i := range n {
			results[i] = r.toGo(r.L.Get(top + i + 1))
		}
		r.L.Pop(n)
		return nil
	})
	return results, err
}

func (r *Runtime) luaPrint(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]any, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	text := fmt.Sprintln(parts...)
	text = text[:len(text)-1]

	r.logger.Infof("%s", text)
	r.host.Message(text)
	return 0
}
