package menu

import (
	"fmt"
	"slices"
)

// Node is one entry in a menu tree. A node exclusively owns its children;
// the parent link is a back-reference used for ancestor walks only.
type Node struct {
	ID     int64
	GUID   string
	Kind   Kind
	Origin Origin

	// Title is only meaningful when HasCustomTitle is set. Otherwise the
	// UI supplies a default title for the action.
	Title          string
	HasCustomTitle bool

	// Action is the command identifier. For KindMenu it is also the
	// resource name the menu is looked up by.
	Action    string
	Parameter string

	Role          string
	RadioGroup    string
	ContainerMode ContainerMode
	ContainerEdge ContainerEdge

	// ShowShortcut is tri-state: nil means unset.
	ShowShortcut *bool

	children []*Node
	parent   *Node
}

// NewNode creates a detached node with an id drawn from ids.
func NewNode(ids IDAllocator, guid string, kind Kind) *Node {
	return &Node{ID: allocator(ids).Next(), GUID: guid, Kind: kind}
}

// NewRoot creates the synthetic root and its single all-menus child.
// It returns the root.
func NewRoot() *Node {
	root := &Node{ID: RootID, GUID: RootGUID, Kind: KindFolder}
	all := &Node{ID: AllMenusID, GUID: AllMenusGUID, Kind: KindFolder}
	root.Add(all, 0)
	return root
}

// Parent returns the enclosing node, or nil for a detached node or the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the ordered children. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Len returns the number of children.
func (n *Node) Len() int { return len(n.children) }

// ChildAt returns the child at index i, or nil when out of range.
func (n *Node) ChildAt(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// IsRoot reports whether n is the synthetic root.
func (n *Node) IsRoot() bool { return n.ID == RootID && n.GUID == RootGUID }

// IsAllMenus reports whether n is the synthetic all-menus node.
func (n *Node) IsAllMenus() bool { return n.ID == AllMenusID && n.GUID == AllMenusGUID }

// CanHaveChildren reports whether the node kind may own children.
func (n *Node) CanHaveChildren() bool {
	return n.Kind == KindFolder || n.Kind == KindMenu
}

// Add inserts child at index, clamping index into [0, Len()].
// child must be detached.
func (n *Node) Add(child *Node, index int) *Node {
	if child.parent != nil {
		panic(fmt.Sprintf("menu: node %d already has a parent", child.ID))
	}
	index = max(0, min(index, len(n.children)))
	n.children = slices.Insert(n.children, index, child)
	child.parent = n
	return child
}

// Remove detaches and returns the child at index. It returns nil when
// index is out of range.
func (n *Node) Remove(index int) *Node {
	if index < 0 || index >= len(n.children) {
		return nil
	}
	child := n.children[index]
	n.children = slices.Delete(n.children, index, index+1)
	child.parent = nil
	return child
}

// IndexOf returns the position of child among n's children.
func (n *Node) IndexOf(child *Node) (int, bool) {
	i := slices.Index(n.children, child)
	return i, i >= 0
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

func (n *Node) find(match func(*Node) bool) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if match(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindByID returns the first node in n's subtree with the given id.
func (n *Node) FindByID(id int64) *Node {
	return n.find(func(c *Node) bool { return c.ID == id })
}

// FindByGUID returns the first node in n's subtree with the given guid.
func (n *Node) FindByGUID(guid string) *Node {
	return n.find(func(c *Node) bool { return c.GUID == guid })
}

// FindByAction returns the first node in n's subtree bound to action.
func (n *Node) FindByAction(action string) *Node {
	return n.find(func(c *Node) bool { return c.Action == action })
}

// IsAncestorOf reports whether n is a strict ancestor of other.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// AncestorMenu returns the nearest enclosing menu, including n itself.
// It returns nil for the root, the all-menus node and detached subtrees
// without a menu.
func (n *Node) AncestorMenu() *Node {
	for p := n; p != nil; p = p.parent {
		if p.IsAllMenus() || p.IsRoot() {
			return nil
		}
		if p.Kind == KindMenu {
			return p
		}
	}
	return nil
}

// AllMenus walks up to the all-menus node. It returns nil when n is not
// attached below one.
func (n *Node) AllMenus() *Node {
	if n.IsRoot() {
		return n.ChildAt(0)
	}
	for p := n; p != nil; p = p.parent {
		if p.IsAllMenus() {
			return p
		}
	}
	return nil
}

// ResourceMenu looks up a named top-level menu from anywhere in the tree.
func (n *Node) ResourceMenu(name string) *Node {
	all := n.AllMenus()
	if all == nil {
		return nil
	}
	for _, c := range all.children {
		if c.Kind == KindMenu && c.Action == name {
			return c
		}
	}
	return nil
}

// SetShowShortcut writes value on n and every descendant, overwriting
// values set earlier.
func (n *Node) SetShowShortcut(value *bool) {
	n.Walk(func(c *Node) bool {
		if value == nil {
			c.ShowShortcut = nil
		} else {
			v := *value
			c.ShowShortcut = &v
		}
		return true
	})
}

// Clone deep-copies n and its subtree, keeping guids and assigning fresh
// ids from ids. The copy is detached.
func (n *Node) Clone(ids IDAllocator) *Node {
	out := *n
	out.ID = allocator(ids).Next()
	out.parent = nil
	out.children = nil
	if n.ShowShortcut != nil {
		v := *n.ShowShortcut
		out.ShowShortcut = &v
	}
	for _, c := range n.children {
		out.Add(c.Clone(ids), len(out.children))
	}
	return &out
}

// GUIDs returns every guid in n's subtree in pre-order.
func (n *Node) GUIDs() []string {
	var out []string
	n.Walk(func(c *Node) bool {
		out = append(out, c.GUID)
		return true
	})
	return out
}

// Bool returns a pointer to v, for tri-state fields.
func Bool(v bool) *bool { return &v }
