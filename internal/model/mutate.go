package model

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/menukit/menustore/internal/menu"
)

// Add inserts a detached node under parent at index and returns it.
// Top-level menus go under AllMenus and must have a unique action; every
// other node needs a parent inside a menu. Every node of the subtree must
// carry the fields its kind requires. The subtree is tagged as user
// content, and missing or clashing guids are replaced.
func (m *Model) Add(node, parent *menu.Node, index int) (*menu.Node, error) {
	if err := m.checkLoaded(); err != nil {
		return nil, err
	}
	if node == nil || node.Parent() != nil || m.contains(node) || node.IsRoot() {
		return nil, ErrAttached
	}
	if !m.contains(parent) {
		return nil, ErrNotInTree
	}
	if err := checkPlacement(node, parent); err != nil {
		return nil, err
	}
	if parent.IsAllMenus() && parent.ResourceMenu(node.Action) != nil {
		return nil, ErrDuplicateMenu
	}
	if index < 0 || index > parent.Len() {
		return nil, ErrInvalidIndex
	}
	if err := validateSubtree(node); err != nil {
		return nil, err
	}

	taken := m.guidSet()
	node.Walk(func(n *menu.Node) bool {
		n.Origin = menu.OriginUser
		if _, clash := taken[n.GUID]; clash || !menu.IsValidGUID(n.GUID) {
			n.GUID = menu.NewGUID()
		}
		taken[n.GUID] = struct{}{}
		return true
	})

	parent.Add(node, index)
	inheritShortcut(node)
	m.commit(idOf(node), menuName(node))
	return node, nil
}

// validateSubtree rejects a subtree the codec could not read back.
func validateSubtree(node *menu.Node) error {
	var invalid error
	node.Walk(func(n *menu.Node) bool {
		if n != node && n.Kind == menu.KindMenu {
			invalid = fmt.Errorf("%w: menu nested below %q", ErrInvalidValue, node.Action)
			return false
		}
		if err := n.Validate(); err != nil {
			invalid = fmt.Errorf("%w: %w", ErrInvalidValue, err)
			return false
		}
		return true
	})
	return invalid
}

// checkPlacement reports whether node may live directly under parent.
func checkPlacement(node, parent *menu.Node) error {
	if parent.IsAllMenus() {
		if node.Kind != menu.KindMenu {
			return ErrInvalidParent
		}
		return nil
	}
	if node.Kind == menu.KindMenu || !parent.CanHaveChildren() {
		return ErrInvalidParent
	}
	if parent.AncestorMenu() == nil {
		return ErrNoMenu
	}
	return nil
}

// Move relocates node to index under newParent. Moving a node onto its
// current position is a successful no-op.
func (m *Model) Move(node, newParent *menu.Node, index int) error {
	if err := m.checkItem(node); err != nil {
		return err
	}
	if !m.contains(newParent) {
		return ErrNotInTree
	}
	if node == newParent || node.IsAncestorOf(newParent) {
		return ErrCycle
	}
	if err := checkPlacement(node, newParent); err != nil {
		return err
	}
	if index < 0 || index > newParent.Len() {
		return ErrInvalidIndex
	}

	oldParent := node.Parent()
	oldIndex, _ := oldParent.IndexOf(node)
	if oldParent == newParent {
		if index == oldIndex || index == oldIndex+1 {
			return nil
		}
		if index > oldIndex {
			index--
		}
	}
	oldMenu := menuName(node)

	oldParent.Remove(oldIndex)
	newParent.Add(node, index)
	inheritShortcut(node)

	m.storage.ScheduleSave()
	newMenu := menuName(node)
	if oldMenu != newMenu {
		m.notifyChanged(nil, oldMenu)
	}
	m.notifyChanged(idOf(node), newMenu)
	return nil
}

// inheritShortcut fills unset shortcut flags in n's subtree from the
// nearest ancestor, matching how the codec reads them back.
func inheritShortcut(n *menu.Node) {
	var inherited *bool
	if p := n.Parent(); p != nil {
		inherited = p.ShowShortcut
	}
	var fill func(n *menu.Node, from *bool)
	fill = func(n *menu.Node, from *bool) {
		if n.ShowShortcut == nil && from != nil {
			n.ShowShortcut = menu.Bool(*from)
		}
		for _, c := range n.Children() {
			fill(c, n.ShowShortcut)
		}
	}
	fill(n, inherited)
}

func (m *Model) guidSet() map[string]struct{} {
	set := make(map[string]struct{})
	m.root.Walk(func(n *menu.Node) bool {
		set[n.GUID] = struct{}{}
		return true
	})
	return set
}

// edit applies fn to node after tagging it as modified. fn is only called
// when changed reports true.
func (m *Model) edit(node *menu.Node, changed func() bool, fn func()) error {
	if err := m.checkItem(node); err != nil {
		return err
	}
	if !changed() {
		return nil
	}
	m.tag(node, false)
	fn()
	m.commit(idOf(node), menuName(node))
	return nil
}

// SetTitle sets a custom title. An empty title restores the default one.
// Titles are stored in Unicode NFC.
func (m *Model) SetTitle(node *menu.Node, title string) error {
	title = norm.NFC.String(title)
	custom := title != ""
	return m.edit(node,
		func() bool { return node.HasCustomTitle != custom || node.Title != title },
		func() {
			node.Title = title
			node.HasCustomTitle = custom
		},
	)
}

// SetParameter sets the action parameter.
func (m *Model) SetParameter(node *menu.Node, parameter string) error {
	return m.edit(node,
		func() bool { return node.Parameter != parameter },
		func() { node.Parameter = parameter },
	)
}

// SetShowShortcut sets the shortcut flag on node and all its descendants.
func (m *Model) SetShowShortcut(node *menu.Node, show bool) error {
	return m.edit(node,
		func() bool {
			changed := false
			node.Walk(func(n *menu.Node) bool {
				changed = n.ShowShortcut == nil || *n.ShowShortcut != show
				return !changed
			})
			return changed
		},
		func() { node.SetShowShortcut(menu.Bool(show)) },
	)
}

// SetContainerMode sets how a container presents its content.
func (m *Model) SetContainerMode(node *menu.Node, mode menu.ContainerMode) error {
	if node != nil && (node.Kind != menu.KindContainer || !mode.Valid()) {
		return ErrInvalidValue
	}
	return m.edit(node,
		func() bool { return node.ContainerMode != mode },
		func() { node.ContainerMode = mode },
	)
}

// SetContainerEdge sets where a container draws its separator. An empty
// edge clears the setting.
func (m *Model) SetContainerEdge(node *menu.Node, edge menu.ContainerEdge) error {
	if node != nil && (node.Kind != menu.KindContainer || (edge != "" && !edge.Valid())) {
		return ErrInvalidValue
	}
	return m.edit(node,
		func() bool { return node.ContainerEdge != edge },
		func() { node.ContainerEdge = edge },
	)
}

// Remove detaches node and its subtree. Bundled nodes in the subtree are
// tombstoned so an upgrade never brings them back.
func (m *Model) Remove(node *menu.Node) error {
	if err := m.checkItem(node); err != nil {
		return err
	}
	name := menuName(node)
	parent := node.Parent()
	index, _ := parent.IndexOf(node)

	m.tag(node, true)
	parent.Remove(index)

	next := parent.ChildAt(index)
	if next == nil {
		next = parent.ChildAt(index - 1)
	}
	if parent.IsAllMenus() {
		next = nil
	}
	m.commit(idOf(next), name)
	return nil
}

// RemoveAction removes every item bound to action from each menu under
// root. root may be the model root, the all-menus node or a single menu.
// It returns the number of nodes removed.
func (m *Model) RemoveAction(root *menu.Node, action string) (int, error) {
	if err := m.checkLoaded(); err != nil {
		return 0, err
	}
	if root != m.root && !m.contains(root) {
		return 0, ErrNotInTree
	}

	scopes := []*menu.Node{root}
	if root == m.root || root.IsAllMenus() {
		scopes = m.AllMenus().Children()
	}

	total := 0
	var changed []string
	for _, scope := range scopes {
		removed := 0
		for {
			hit := findItem(scope, action)
			if hit == nil {
				break
			}
			m.tag(hit, true)
			p := hit.Parent()
			i, _ := p.IndexOf(hit)
			p.Remove(i)
			removed++
		}
		if removed > 0 {
			total += removed
			changed = append(changed, menuName(scope))
		}
	}
	if total == 0 {
		return 0, nil
	}
	m.storage.ScheduleSave()
	for _, name := range changed {
		m.notifyChanged(nil, name)
	}
	return total, nil
}

// findItem finds the first descendant of scope, excluding scope, bound to
// action.
func findItem(scope *menu.Node, action string) *menu.Node {
	for _, c := range scope.Children() {
		if hit := c.FindByAction(action); hit != nil {
			return hit
		}
	}
	return nil
}

// RemoveBundleTag marks node as edited by the user. A bundled node gets
// its guid tombstoned and becomes ModifiedBundled. With includeChildren
// the same applies to every descendant.
func (m *Model) RemoveBundleTag(node *menu.Node, includeChildren bool) error {
	if err := m.checkItem(node); err != nil {
		return err
	}
	if m.tag(node, includeChildren) {
		m.storage.ScheduleSave()
	}
	return nil
}

// tag reports whether any node changed.
func (m *Model) tag(node *menu.Node, includeChildren bool) bool {
	changed := false
	mark := func(n *menu.Node) {
		if n.Origin == menu.OriginBundled {
			m.control.AddDeleted(n.GUID)
			n.Origin = menu.OriginModifiedBundled
			changed = true
		}
	}
	if !includeChildren {
		mark(node)
		return changed
	}
	node.Walk(func(n *menu.Node) bool {
		mark(n)
		return true
	})
	return changed
}
