package undo

import "fmt"

// OpKind identifies the shape of an EditOperation.
type OpKind uint8

const (
	// OpInsert inserts Text at Offset.
	OpInsert OpKind = iota
	// OpDelete removes Length bytes starting at Offset.
	OpDelete
	// OpReplace removes Length bytes at Offset and inserts Text there.
	OpReplace
	// OpBulk applies Ops in order.
	OpBulk
)

// String returns the operation kind name.
func (k OpKind) String() string {
	switch k {
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpReplace:
		return "replace"
	case OpBulk:
		return "bulk"
	default:
		return fmt.Sprintf("OpKind(%d)", k)
	}
}

// EditOperation is an edit for the caller to apply to its text. Undo returns
// inverse operations and redo returns the original edits.
type EditOperation struct {
	Kind   OpKind
	Offset int
	Length int
	Text   string
	Ops    []EditOperation
}

// NodeKind identifies what a history node records.
type NodeKind uint8

const (
	KindRoot NodeKind = iota
	KindInsert
	KindDelete
	KindReplace
	KindTransaction
)

// String returns the node kind name.
func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	case KindReplace:
		return "replace"
	case KindTransaction:
		return "transaction"
	default:
		return fmt.Sprintf("NodeKind(%d)", k)
	}
}

// edit is a single recorded change. For replaces, old holds the removed text
// and value the inserted text; otherwise value is the inserted or deleted text.
type edit struct {
	kind   NodeKind
	offset int
	value  string
	old    string
}

func (e edit) forward() EditOperation {
	switch e.kind {
	case KindInsert:
		return EditOperation{Kind: OpInsert, Offset: e.offset, Text: e.value}
	case KindDelete:
		return EditOperation{Kind: OpDelete, Offset: e.offset, Length: len(e.value)}
	default:
		return EditOperation{Kind: OpReplace, Offset: e.offset, Length: len(e.old), Text: e.value}
	}
}

func (e edit) inverse() EditOperation {
	switch e.kind {
	case KindInsert:
		return EditOperation{Kind: OpDelete, Offset: e.offset, Length: len(e.value)}
	case KindDelete:
		return EditOperation{Kind: OpInsert, Offset: e.offset, Text: e.value}
	default:
		return EditOperation{Kind: OpReplace, Offset: e.offset, Length: len(e.value), Text: e.old}
	}
}
