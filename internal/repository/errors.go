package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrConcurrentModification is returned when an optimistic version
	// check rejects a write. The caller may retry its single logical
	// operation against fresh state; writes are never merged.
	ErrConcurrentModification = errors.New("concurrent modification")
)
