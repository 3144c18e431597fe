package undo

import "errors"

// Errors returned by undo tree operations.
var (
	// ErrNothingToUndo indicates the current node is the root.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo indicates the current node has no children.
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrBranchOutOfRange indicates a redo branch index that does not exist.
	ErrBranchOutOfRange = errors.New("redo branch out of range")

	// ErrTransactionOpen indicates undo or redo was requested mid-transaction.
	ErrTransactionOpen = errors.New("transaction in progress")

	// ErrNoTransaction indicates EndTransaction without a matching start.
	ErrNoTransaction = errors.New("no transaction in progress")

	// ErrInvalidSnapshot indicates a snapshot whose structure is inconsistent.
	ErrInvalidSnapshot = errors.New("invalid undo snapshot")
)
