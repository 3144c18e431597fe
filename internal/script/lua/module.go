package lua

import (
	lua "github.com/yuin/gopher-lua"
)

func (r *Runtime) module() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"insert":            r.call1(r.host.Insert),
		"delete_back":       r.call0(r.host.DeleteBack),
		"delete_forward":    r.call0(r.host.DeleteForward),
		"move":              r.call1(r.host.Move),
		"undo":              r.call0(r.host.Undo),
		"redo":              r.call0(r.host.Redo),
		"replace":           r.call1(r.host.Replace),
		"place_mark":        r.call1(r.host.PlaceMark),
		"remove_mark":       r.call0(r.host.RemoveMark),
		"delete_region":     r.call0(r.host.DeleteRegion),
		"cursor_remove":     r.callInt(r.host.RemoveCursor),
		"cursor_main":       r.callInt(r.host.ChangeMainCursor),
		"open":              r.call1(r.host.Open),
		"save":              r.call0(r.host.Save),
		"command":           r.call1(r.host.Command),
		"message":           r.notify(r.host.Message),
		"warn":              r.notify(r.host.Warn),
		"set_major_mode":    r.call1(r.host.SetMajorMode),
		"define_minor_mode": r.call1(r.host.DefineMinorMode),
		"enable_minor_mode": r.call1(r.host.EnableMinorMode),
		"cursor_add": func(L *lua.LState) int {
			if err := r.host.AddCursor(L.CheckInt(1), L.CheckInt(2)); err != nil {
				L.RaiseError("%v", err)
			}
			return 0
		},
		"cursor_count": func(L *lua.LState) int {
			L.Push(lua.LNumber(r.host.CursorCount()))
			return 1
		},
		"cursor_position": func(L *lua.LState) int {
			line, col, err := r.host.CursorPosition(L.CheckInt(1))
			if err != nil {
				L.RaiseError("%v", err)
			}
			L.Push(lua.LNumber(line))
			L.Push(lua.LNumber(col))
			return 2
		},
		"buffer_name": func(L *lua.LState) int {
			L.Push(lua.LString(r.host.BufferName()))
			return 1
		},
		"buffer_text": func(L *lua.LState) int {
			L.Push(lua.LString(r.host.BufferText()))
			return 1
		},
		"cursor": func(L *lua.LState) int {
			line, col := r.host.Cursor()
			L.Push(lua.LNumber(line))
			L.Push(lua.LNumber(col))
			return 2
		},
		"session_id": func(L *lua.LState) int {
			L.Push(lua.LString(r.host.SessionID()))
			return 1
		},
		"bind": func(L *lua.LState) int {
			keys := L.CheckString(1)
			fn := L.CheckFunction(2)
			if err := r.host.Bind(keys, &Function{runtime: r, fn: fn}); err != nil {
				L.RaiseError("bind %q: %v", keys, err)
			}
			return 0
		},
		"add_hook": func(L *lua.LState) int {
			hook := L.CheckString(1)
			name := L.CheckString(2)
			fn := L.CheckFunction(3)
			if err := r.host.AddHook(hook, name, &Function{runtime: r, fn: fn}); err != nil {
				L.RaiseError("add_hook: %v", err)
			}
			return 0
		},
		"remove_hook": func(L *lua.LState) int {
			L.Push(lua.LBool(r.host.RemoveHook(L.CheckString(1), L.CheckString(2))))
			return 1
		},
		"major_mode": func(L *lua.LState) int {
			L.Push(lua.LString(r.host.MajorMode()))
			return 1
		},
		"mode_bind": func(L *lua.LState) int {
			mode := L.CheckString(1)
			keys := L.CheckString(2)
			fn := L.CheckFunction(3)
			if err := r.host.ModeBind(mode, keys, &Function{runtime: r, fn: fn}); err != nil {
				L.RaiseError("mode_bind %q: %v", keys, err)
			}
			return 0
		},
		"mode_command": func(L *lua.LState) int {
			mode := L.CheckString(1)
			name := L.CheckString(2)
			fn := L.CheckFunction(3)
			if err := r.host.ModeCommand(mode, name, &Function{runtime: r, fn: fn}); err != nil {
				L.RaiseError("mode_command %q: %v", name, err)
			}
			return 0
		},
		"mode_alias": func(L *lua.LState) int {
			if err := r.host.ModeAlias(L.CheckString(1), L.CheckString(2), L.CheckString(3)); err != nil {
				L.RaiseError("mode_alias: %v", err)
			}
			return 0
		},
		"remove_minor_mode": func(L *lua.LState) int {
			L.Push(lua.LBool(r.host.RemoveMinorMode(L.CheckString(1))))
			return 1
		},
		"disable_minor_mode": func(L *lua.LState) int {
			L.Push(lua.LBool(r.host.DisableMinorMode(L.CheckString(1))))
			return 1
		},
		"minor_modes": func(L *lua.LState) int {
			L.Push(r.toLua(r.host.MinorModes()))
			return 1
		},
	}
}

// call0 adapts a host operation without arguments. Host errors become Lua
// errors, catchable with pcall.
func (r *Runtime) call0(op func() error) lua.LGFunction {
	return func(L *lua.LState) int {
		if err := op(); err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}
}

func (r *Runtime) call1(op func(string) error) lua.LGFunction {
	return func(L *lua.LState) int {
		if err := op(L.CheckString(1)); err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}
}

func (r *Runtime) callInt(op func(int) error) lua.LGFunction {
	return func(L *lua.LState) int {
		if err := op(L.CheckInt(1)); err != nil {
			L.RaiseError("%v", err)
		}
		return 0
	}
}

func (r *Runtime) notify(op func(string)) lua.LGFunction {
	return func(L *lua.LState) int {
		op(L.CheckString(1))
		return 0
	}
}
