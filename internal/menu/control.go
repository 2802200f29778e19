package menu

import "slices"

// Control is the metadata persisted alongside a menu tree.
type Control struct {
	Format  string
	Version string
	// Deleted lists guids of bundled nodes the user edited or removed.
	// An upgrade never reintroduces a guid found here.
	Deleted []string
}

// Clone returns a deep copy of c.
func (c *Control) Clone() *Control {
	if c == nil {
		return nil
	}
	out := *c
	out.Deleted = slices.Clone(c.Deleted)
	return &out
}

// IsDeleted reports whether guid is tombstoned.
func (c *Control) IsDeleted(guid string) bool {
	return slices.Contains(c.Deleted, guid)
}

// AddDeleted tombstones guid. Adding a guid twice is a no-op.
func (c *Control) AddDeleted(guid string) {
	if guid == "" || c.IsDeleted(guid) {
		return
	}
	c.Deleted = append(c.Deleted, guid)
}

// ClearDeleted removes the given guids from the tombstone list.
func (c *Control) ClearDeleted(guids []string) {
	if len(guids) == 0 || len(c.Deleted) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(guids))
	for _, g := range guids {
		drop[g] = struct{}{}
	}
	c.Deleted = slices.DeleteFunc(c.Deleted, func(g string) bool {
		_, ok := drop[g]
		return ok
	})
}
