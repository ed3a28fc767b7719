// ABOUTME: Sentinel error kinds shared by the storage layer and its callers
// ABOUTME: Matched with errors.Is; each layer wraps them with context
package storage

import "errors"

var (
	// ErrLocked means connect attempts against a locked database file were
	// exhausted.
	ErrLocked = errors.New("storage: database locked")

	// ErrSchemaMismatch means a stored vector blob has the wrong length for
	// the declared dimensionality.
	ErrSchemaMismatch = errors.New("storage: vector blob length mismatch")

	// ErrNotFound means the referenced row does not exist.
	ErrNotFound = errors.New("storage: not found")

	// ErrInvalidArgument means the caller passed an out-of-domain value.
	ErrInvalidArgument = errors.New("storage: invalid argument")
)
