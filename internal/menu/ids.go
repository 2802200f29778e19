package menu

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Reserved identities of the two synthetic nodes at the top of every tree.
const (
	RootID     int64 = 1
	AllMenusID int64 = 2

	RootGUID     = "00000000-0000-4000-8000-000000000001"
	AllMenusGUID = "00000000-0000-4000-8000-000000000002"
)

// IDAllocator hands out in-session node ids. Ids are never persisted and
// never reused by the same allocator.
type IDAllocator interface {
	Next() int64
}

// Counter is an IDAllocator backed by an atomic counter.
type Counter struct {
	last atomic.Int64
}

// NewCounter returns a Counter whose first id is AllMenusID+1.
func NewCounter() *Counter {
	c := &Counter{}
	c.last.Store(AllMenusID)
	return c
}

// Next returns the next unused id.
func (c *Counter) Next() int64 {
	return c.last.Add(1)
}

// DefaultIDs is the process-wide allocator used when none is injected.
var DefaultIDs IDAllocator = NewCounter()

func allocator(ids IDAllocator) IDAllocator {
	if ids == nil {
		return DefaultIDs
	}
	return ids
}

// NewGUID returns a fresh random guid.
func NewGUID() string {
	return uuid.NewString()
}

// IsValidGUID reports whether s is a syntactically valid guid.
func IsValidGUID(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
