package engine

import "errors"

// Errors returned by engine operations.
var (
	// ErrReadOnly indicates a write was attempted on a read-only editor.
	ErrReadOnly = errors.New("editor is read-only")

	// ErrNestedTransaction indicates Transaction was called from inside
	// another transaction's function.
	ErrNestedTransaction = errors.New("transaction already in progress")
)
