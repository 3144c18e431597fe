// Package session implements the editing session actor.
//
// A Session is a broker client that owns a set of open buffers, each with
// its own cursor list, and turns key events from its display clients into
// cursor, edit and undo operations. After every handled message it sends
// the focused buffer, rendered with its cursors, to every display client.
//
// File buffers live in the shared buffer table and may be open in several
// sessions at once; the buffer handle serializes their edits. The
// **scratch**, **Warnings** and **Errors** buffers belong to one session.
//
// A Session is driven by a single goroutine. None of its methods are safe
// for concurrent use.
package session
