package model

import (
	"github.com/menukit/menustore/internal/menu"
	"github.com/menukit/menustore/internal/storage"
)

// Reset replaces node with its factory version. The bundled menus are read
// in the background; once they arrive the equivalent node, found by menu
// action and then node action, is spliced in at node's position.
// Observers get Changed with the fresh node selected. If node no longer
// exists by then, or has no bundled equivalent, nothing changes.
func (m *Model) Reset(node *menu.Node) error {
	if err := m.checkItem(node); err != nil {
		return err
	}
	mn := node.AncestorMenu()
	if mn == nil {
		return ErrNoMenu
	}
	if node == mn {
		return m.ResetMenu(mn.Action)
	}
	menuAction, action := mn.Action, node.Action
	if action == "" {
		// Separators carry no action to match on.
		return ErrNotFound
	}

	m.storage.LoadBundled(func(res *storage.LoadResult) {
		if !m.usable(res, "reset item") {
			return
		}
		if !m.contains(node) {
			m.logger.Info("reset target removed before bundled menus arrived", "action", action)
			return
		}
		bmenu := res.Root.ResourceMenu(menuAction)
		if bmenu == nil {
			m.logger.Warn("no bundled menu for reset", "menu", menuAction)
			return
		}
		fresh := findItem(bmenu, action)
		if fresh == nil {
			m.logger.Warn("no bundled item for reset", "menu", menuAction, "action", action)
			return
		}
		m.splice(node, detach(fresh))
		m.commit(idOf(fresh), menuName(fresh))
	})
	return nil
}

// ResetMenu replaces the named menu with its factory version. Observers
// get Reset(false) and then Changed with the menu's first item selected.
func (m *Model) ResetMenu(name string) error {
	if err := m.checkLoaded(); err != nil {
		return err
	}
	if m.Menu(name) == nil {
		return ErrNotFound
	}

	m.storage.LoadBundled(func(res *storage.LoadResult) {
		if !m.usable(res, "reset menu") {
			return
		}
		live := m.Menu(name)
		if live == nil {
			m.logger.Info("menu removed before bundled menus arrived", "menu", name)
			return
		}
		bmenu := res.Root.ResourceMenu(name)
		if bmenu == nil {
			m.logger.Warn("no bundled menu for reset", "menu", name)
			return
		}
		m.splice(live, detach(bmenu))
		m.storage.ScheduleSave()
		m.notifyReset(false)
		m.notifyChanged(idOf(bmenu.ChildAt(0)), name)
	})
	return nil
}

// ResetAll replaces every menu and the control metadata with the factory
// versions. On a model that never loaded it performs a full load from the
// bundled menus instead. Observers get Reset(true).
func (m *Model) ResetAll() error {
	if m.closed {
		return ErrClosed
	}
	switch m.state {
	case StateUnloaded:
		m.startLoad(true)
		return nil
	case StateLoading:
		return ErrNotLoaded
	}

	m.storage.LoadBundled(func(res *storage.LoadResult) {
		if !m.usable(res, "reset all") {
			return
		}
		m.root = res.Root
		m.control = res.Control
		if m.control == nil {
			m.control = &menu.Control{}
		}
		m.control.Deleted = nil
		m.storage.ScheduleSave()
		m.notifyReset(true)
	})
	return nil
}

func (m *Model) usable(res *storage.LoadResult, op string) bool {
	if m.closed || m.state != StateLoaded {
		return false
	}
	if res.Err != nil {
		m.logger.Error(op+" failed", "error", res.Err)
		return false
	}
	return true
}

// detach removes n from its bundled tree so it can be grafted.
func detach(n *menu.Node) *menu.Node {
	p := n.Parent()
	i, _ := p.IndexOf(n)
	return p.Remove(i)
}

// splice swaps live for fresh at live's position. Tombstones for the
// incoming guids are cleared, and any other live node that already uses
// one of them gets a new guid and is tagged as user content.
func (m *Model) splice(live, fresh *menu.Node) {
	parent := live.Parent()
	index, _ := parent.IndexOf(live)
	parent.Remove(index)

	incoming := fresh.GUIDs()
	for _, guid := range incoming {
		if dup := m.root.FindByGUID(guid); dup != nil {
			dup.GUID = menu.NewGUID()
			dup.Origin = menu.OriginUser
			m.logger.Debug("guid collision on reset", "guid", guid, "renamed", dup.GUID)
		}
	}
	m.control.ClearDeleted(incoming)

	parent.Add(fresh, index)
	inheritShortcut(fresh)
}
