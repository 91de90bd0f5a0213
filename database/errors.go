package database

import "errors"

// Core data-layer errors
var (
	// ErrStoreUnavailable means the local store could not be opened or used.
	// Callers may discard the cached handle and attempt exactly one re-open
	// before surfacing the error.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound means an update or delete referenced a nonexistent id.
	ErrNotFound = errors.New("record not found")
)
