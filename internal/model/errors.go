package model

import "errors"

// Sentinel errors returned by mutations. A rejected mutation leaves the
// tree untouched.
var (
	ErrNotLoaded     = errors.New("model: menus not loaded")
	ErrClosed        = errors.New("model: closed")
	ErrInvalidParent = errors.New("model: invalid parent for node")
	ErrDuplicateMenu = errors.New("model: duplicate top-level menu")
	ErrCycle         = errors.New("model: move would create a cycle")
	ErrNoMenu        = errors.New("model: target has no enclosing menu")
	ErrInvalidIndex  = errors.New("model: index out of range")
	ErrNotFound      = errors.New("model: not found")
	ErrNotInTree     = errors.New("model: node is not part of this tree")
	ErrAttached      = errors.New("model: node already has a parent")
	ErrInvalidValue  = errors.New("model: invalid value for node kind")
)
