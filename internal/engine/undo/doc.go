// Package undo records buffer edits in a branching history.
//
// The history is a tree rather than a stack. Every edit becomes a child of
// the current node; undo walks to the parent and redo walks to a child, so an
// edit made after an undo starts a new branch and the old future stays
// reachable through RedoBranch.
//
// Nodes live in an arena and refer to each other by index. The current node
// is recomputed from the root along the descent path (the child index taken
// at every level) whenever the path shrinks or grows.
//
// Typed runs are coalesced: an insert adjacent to the current insert node,
// made within the edit delay, extends that node instead of creating a new
// one. Deletes coalesce the same way in both directions. Replaces never do.
//
// Transactions group arbitrary edits into one node:
//
//	tree.StartTransaction()
//	tree.Insert(0, "a")
//	tree.Delete(10, "xyz")
//	_ = tree.EndTransaction()
//	op, _ := tree.Undo() // one bulk operation, inverses in reverse order
//
// A Tree is not safe for concurrent use; buffers guard it with their lock.
package undo
