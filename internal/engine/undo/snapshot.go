package undo

import "fmt"

// Snapshot is a serializable copy of a tree's structure and position.
// Timestamps are not kept, so a restored tree never coalesces into old nodes.
type Snapshot struct {
	Nodes   []SnapshotNode `json:"nodes"`
	Descent []int          `json:"descent"`
}

// SnapshotNode is one arena entry of a Snapshot.
type SnapshotNode struct {
	Kind     NodeKind       `json:"kind"`
	Parent   int            `json:"parent"`
	Children []int          `json:"children,omitempty"`
	Offset   int            `json:"offset,omitempty"`
	Value    string         `json:"value,omitempty"`
	Old      string         `json:"old,omitempty"`
	Entries  []SnapshotEdit `json:"entries,omitempty"`
}

// SnapshotEdit is one entry of a transaction node.
type SnapshotEdit struct {
	Kind   NodeKind `json:"kind"`
	Offset int      `json:"offset"`
	Value  string   `json:"value,omitempty"`
	Old    string   `json:"old,omitempty"`
}

// Snapshot copies the tree. An open transaction is recorded as completed.
func (t *Tree) Snapshot() Snapshot {
	s := Snapshot{
		Nodes:   make([]SnapshotNode, len(t.nodes)),
		Descent: append([]int(nil), t.descent...),
	}
	for i, n := range t.nodes {
		sn := SnapshotNode{
			Kind:   n.kind,
			Parent: int(n.parent),
			Offset: n.offset,
			Value:  n.value,
			Old:    n.old,
		}
		for _, c := range n.children {
			sn.Children = append(sn.Children, int(c))
		}
		for _, e := range n.entries {
			sn.Entries = append(sn.Entries, SnapshotEdit{Kind: e.kind, Offset: e.offset, Value: e.value, Old: e.old})
		}
		s.Nodes[i] = sn
	}
	return s
}

// Restore rebuilds a tree from s, validating every index it contains.
func Restore(s Snapshot, opts ...Option) (*Tree, error) {
	if len(s.Nodes) == 0 || s.Nodes[0].Kind != KindRoot {
		return nil, fmt.Errorf("%w: missing root", ErrInvalidSnapshot)
	}

	t := New(opts...)
	t.nodes = make([]node, len(s.Nodes))
	for i, sn := range s.Nodes {
		if i > 0 && (sn.Kind == KindRoot || sn.Parent < 0 || sn.Parent >= len(s.Nodes)) {
			return nil, fmt.Errorf("%w: node %d", ErrInvalidSnapshot, i)
		}
		n := node{
			edit:   edit{kind: sn.Kind, offset: sn.Offset, value: sn.Value, old: sn.Old},
			parent: NodeID(sn.Parent),
		}
		for _, c := range sn.Children {
			if c <= 0 || c >= len(s.Nodes) || s.Nodes[c].Parent != i {
				return nil, fmt.Errorf("%w: child %d of node %d", ErrInvalidSnapshot, c, i)
			}
			n.children = append(n.children, NodeID(c))
		}
		for _, e := range sn.Entries {
			n.entries = append(n.entries, edit{kind: e.Kind, offset: e.Offset, value: e.Value, old: e.Old})
		}
		t.nodes[i] = n
	}

	id := rootID
	for _, step := range s.Descent {
		children := t.nodes[id].children
		if step < 0 || step >= len(children) {
			return nil, fmt.Errorf("%w: descent step %d", ErrInvalidSnapshot, step)
		}
		id = children[step]
	}
	t.descent = append([]int(nil), s.Descent...)
	t.current = id
	return t, nil
}
