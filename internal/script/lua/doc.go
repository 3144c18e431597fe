// Package lua embeds a Lua interpreter for editor configuration and hooks.
//
// Scripts see a single global table, koru, whose functions drive the
// session through the Host interface:
//
//	koru.bind("C-c t", function() koru.insert("note") end)
//	koru.add_hook("file-open", "greet", function(path)
//	    koru.message("opened " .. path)
//	end)
//
// Key bindings and command-bar commands can also belong to a mode. A minor
// mode's bindings apply only in buffers that enable it:
//
//	koru.define_minor_mode("notes")
//	koru.mode_bind("notes", "C-c d", function() koru.insert("- [ ] ") end)
//	koru.mode_command("text-edit", "select-lines", function(arg)
//	    koru.place_mark("line")
//	end)
//
// Cursor indices passed to cursor_remove, cursor_main and cursor_position
// count from 0 in buffer order.
//
// Only the base, table, string and math libraries are opened. There is no
// io, os, package or debug access.
//
// A Runtime is not safe for concurrent use. The session calls it from its
// own goroutine, and Lua functions handed to the host as script.Callable
// values must be called from that goroutine too.
package lua
