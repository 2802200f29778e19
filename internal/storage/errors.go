// Package storage connects a menu model to its backing file. All file
// access, parsing and upgrade merging happen on a single background lane;
// results are posted back to the owning goroutine.
package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNoBundle indicates the bundled defaults could not be read or parsed.
	ErrNoBundle = errors.New("storage: bundled menus unavailable")

	// ErrClosed indicates the storage has been torn down.
	ErrClosed = errors.New("storage: closed")

	// ErrNoSerializer indicates no live model is attached to serialize.
	ErrNoSerializer = errors.New("storage: no serializer attached")
)
