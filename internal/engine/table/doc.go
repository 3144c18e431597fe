// Package table keeps the set of open buffers.
//
// Buffers live in a growable slot array. Closing a buffer frees its slot, and
// a later Open or Create reuses the oldest free slot. A Ref pairs a buffer
// handle with the slot it was issued from, so a Ref outlives Close: the
// buffer stays usable through it, but the table no longer resolves its name.
//
//	t := table.New()
//	ref, err := t.Open("main.go")
//	...
//	err = t.Close(ref)
package table
