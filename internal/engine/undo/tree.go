package undo

import "time"

// DefaultEditDelay is the window within which adjacent edits coalesce.
const DefaultEditDelay = 1000 * time.Millisecond

// NodeID addresses a node in the tree's arena.
type NodeID int

const rootID NodeID = 0

type node struct {
	edit
	parent    NodeID
	children  []NodeID
	timestamp time.Time

	entries []edit // transaction nodes only
}

func (n *node) forward() EditOperation {
	if n.kind != KindTransaction {
		return n.edit.forward()
	}
	ops := make([]EditOperation, len(n.entries))
	for i, e := range n.entries {
		ops[i] = e.forward()
	}
	return EditOperation{Kind: OpBulk, Ops: ops}
}

func (n *node) inverse() EditOperation {
	if n.kind != KindTransaction {
		return n.edit.inverse()
	}
	ops := make([]EditOperation, len(n.entries))
	for i, e := range n.entries {
		ops[len(n.entries)-1-i] = e.inverse()
	}
	return EditOperation{Kind: OpBulk, Ops: ops}
}

// Option configures a Tree.
type Option func(*Tree)

// WithEditDelay sets the coalescing window.
func WithEditDelay(d time.Duration) Option {
	return func(t *Tree) {
		t.editDelay = d
	}
}

// WithClock replaces time.Now, which lets tests control coalescing.
func WithClock(now func() time.Time) Option {
	return func(t *Tree) {
		t.now = now
	}
}

// Tree is a branching undo history.
type Tree struct {
	nodes   []node
	current NodeID
	descent []int

	txDepth   int
	editDelay time.Duration
	now       func() time.Time
}

// New creates a tree holding only the root.
func New(opts ...Option) *Tree {
	t := &Tree{
		nodes:     []node{{edit: edit{kind: KindRoot}}},
		editDelay: DefaultEditDelay,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Insert records text inserted at offset.
func (t *Tree) Insert(offset int, text string) {
	if text == "" {
		return
	}
	e := edit{kind: KindInsert, offset: offset, value: text}
	if t.appendToTransaction(e) {
		return
	}

	now := t.now()
	if cur := t.coalescible(KindInsert, now); cur != nil {
		switch offset {
		case cur.offset:
			cur.value = text + cur.value
			cur.timestamp = now
			return
		case cur.offset + len(cur.value):
			cur.value += text
			cur.timestamp = now
			return
		}
	}
	t.push(node{edit: e, timestamp: now})
}

// Delete records text deleted at offset.
func (t *Tree) Delete(offset int, text string) {
	if text == "" {
		return
	}
	e := edit{kind: KindDelete, offset: offset, value: text}
	if t.appendToTransaction(e) {
		return
	}

	now := t.now()
	if cur := t.coalescible(KindDelete, now); cur != nil {
		switch {
		case offset == cur.offset:
			cur.value += text
			cur.timestamp = now
			return
		case offset+len(text) == cur.offset:
			cur.value = text + cur.value
			cur.offset = offset
			cur.timestamp = now
			return
		}
	}
	t.push(node{edit: e, timestamp: now})
}

// Replace records old replaced by text at offset. Replaces never coalesce.
func (t *Tree) Replace(offset int, old, text string) {
	if old == "" && text == "" {
		return
	}
	e := edit{kind: KindReplace, offset: offset, value: text, old: old}
	if t.appendToTransaction(e) {
		return
	}
	t.push(node{edit: e, timestamp: t.now()})
}

// coalescible returns the current node if a new edit of kind may merge into
// it. Nodes with children never merge, since their redo branches were
// recorded against the node's original text.
func (t *Tree) coalescible(kind NodeKind, now time.Time) *node {
	cur := &t.nodes[t.current]
	if cur.kind != kind || len(cur.children) > 0 {
		return nil
	}
	if now.Sub(cur.timestamp) > t.editDelay {
		return nil
	}
	return cur
}

func (t *Tree) appendToTransaction(e edit) bool {
	if t.txDepth == 0 {
		return false
	}
	cur := &t.nodes[t.current]
	cur.entries = append(cur.entries, e)
	cur.timestamp = t.now()
	return true
}

// push adds n as the newest child of the current node and descends into it.
func (t *Tree) push(n node) {
	n.parent = t.current
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, n)

	parent := &t.nodes[t.current]
	parent.children = append(parent.children, id)
	t.descent = append(t.descent, len(parent.children)-1)
	t.current = id
}

// StartTransaction opens a transaction. Nested calls join the open one.
func (t *Tree) StartTransaction() {
	t.txDepth++
	if t.txDepth > 1 {
		return
	}
	t.push(node{edit: edit{kind: KindTransaction}, timestamp: t.now()})
}

// EndTransaction closes the innermost StartTransaction. A transaction that
// recorded nothing is removed from the tree.
func (t *Tree) EndTransaction() error {
	if t.txDepth == 0 {
		return ErrNoTransaction
	}
	t.txDepth--
	if t.txDepth > 0 {
		return nil
	}

	cur := &t.nodes[t.current]
	if len(cur.entries) > 0 {
		return nil
	}

	id, parent := t.current, cur.parent
	p := &t.nodes[parent]
	p.children = p.children[:len(p.children)-1]
	t.descent = t.descent[:len(t.descent)-1]
	t.current = parent
	if int(id) == len(t.nodes)-1 {
		t.nodes = t.nodes[:id]
	}
	return nil
}

// InTransaction reports whether a transaction is open.
func (t *Tree) InTransaction() bool {
	return t.txDepth > 0
}

// Undo steps to the parent of the current node and returns the operation
// that reverts the current node's edit.
func (t *Tree) Undo() (EditOperation, error) {
	if t.txDepth > 0 {
		return EditOperation{}, ErrTransactionOpen
	}
	if t.current == rootID {
		return EditOperation{}, ErrNothingToUndo
	}

	op := t.nodes[t.current].inverse()
	t.descent = t.descent[:len(t.descent)-1]
	t.current = t.walk()
	return op, nil
}

// Redo descends into the newest child and returns its edit.
func (t *Tree) Redo() (EditOperation, error) {
	if t.txDepth > 0 {
		return EditOperation{}, ErrTransactionOpen
	}
	n := t.RedoBranchLen()
	if n == 0 {
		return EditOperation{}, ErrNothingToRedo
	}
	return t.RedoBranch(n - 1)
}

// RedoBranch descends into child index of the current node and returns its edit.
func (t *Tree) RedoBranch(index int) (EditOperation, error) {
	if t.txDepth > 0 {
		return EditOperation{}, ErrTransactionOpen
	}
	if index < 0 || index >= t.RedoBranchLen() {
		return EditOperation{}, ErrBranchOutOfRange
	}

	t.descent = append(t.descent, index)
	t.current = t.walk()
	return t.nodes[t.current].forward(), nil
}

// RedoBranchLen returns the number of redo branches at the current node.
func (t *Tree) RedoBranchLen() int {
	return len(t.nodes[t.current].children)
}

// CanUndo reports whether Undo would succeed.
func (t *Tree) CanUndo() bool {
	return t.current != rootID && t.txDepth == 0
}

// Depth returns the number of edits between the root and the current node.
func (t *Tree) Depth() int {
	return len(t.descent)
}

// Len returns the number of nodes in the tree, root included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Current returns the current node id and its kind.
func (t *Tree) Current() (NodeID, NodeKind) {
	return t.current, t.nodes[t.current].kind
}

// walk follows the descent path from the root.
func (t *Tree) walk() NodeID {
	id := rootID
	for _, step := range t.descent {
		id = t.nodes[id].children[step]
	}
	return id
}
