// Package model is the single-goroutine facade over one menu store. It
// validates and applies edits, schedules saves and notifies observers.
//
// A Model and its tree belong to the goroutine that drains the owner loop
// the storage posts to. No method is safe for concurrent use.
package model

import (
	"fmt"
	"log/slog"

	"github.com/menukit/menustore/internal/codec"
	"github.com/menukit/menustore/internal/menu"
	"github.com/menukit/menustore/internal/storage"
)

// State is the load state of a Model.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Model owns one menu tree and its storage.
type Model struct {
	name      string
	storage   *storage.Storage
	logger    *slog.Logger
	observers registry

	root    *menu.Node
	control *menu.Control
	state   State
	loadErr error
	closed  bool
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		m.logger = l
	}
}

// New creates an unloaded model named name (for example "main" or
// "context") backed by st. The model takes ownership of st.
func New(name string, st *storage.Storage, opts ...Option) *Model {
	m := &Model{
		name:    name,
		storage: st,
		logger:  slog.Default().With("module", "menu.model"),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("store", name)
	return m
}

// Name returns the store name given to New.
func (m *Model) Name() string { return m.name }

// State returns the load state.
func (m *Model) State() State { return m.state }

// Loaded reports whether the tree is available.
func (m *Model) Loaded() bool { return m.state == StateLoaded }

// LoadErr returns the error of the last failed load, if any.
func (m *Model) LoadErr() error { return m.loadErr }

// Load starts loading the tree. Observers get Loaded once it completes;
// on failure the model stays unloaded and LoadErr is set. Load is a no-op
// while a load is in flight or after the tree is available.
func (m *Model) Load() {
	if m.closed || m.state != StateUnloaded {
		return
	}
	m.startLoad(false)
}

func (m *Model) startLoad(forceBundled bool) {
	m.state = StateLoading
	m.storage.Load(storage.LoadRequest{
		ForceBundled: forceBundled,
		Done: func(res *storage.LoadResult) {
			m.finishLoad(res, forceBundled)
		},
	})
}

func (m *Model) finishLoad(res *storage.LoadResult, reset bool) {
	if m.closed {
		return
	}
	if res.Err != nil {
		m.state = StateUnloaded
		m.loadErr = res.Err
		m.logger.Error("menus failed to load", "error", res.Err)
		return
	}

	m.root = res.Root
	m.control = res.Control
	if m.control == nil {
		m.control = &menu.Control{Format: codec.DefaultFormat}
	}
	m.state = StateLoaded
	m.loadErr = nil
	m.storage.SetSerializer(m.serialize)
	m.logger.Info("menus loaded",
		"menus", m.root.ChildAt(0).Len(),
		"version", m.control.Version,
		"bundled", res.FromBundled,
		"upgraded", res.Upgraded,
	)

	m.notifyLoaded()
	if reset {
		m.storage.ScheduleSave()
		m.notifyReset(true)
	}
}

func (m *Model) serialize() ([]byte, error) {
	if m.root == nil {
		return nil, ErrNotLoaded
	}
	return codec.Encode(m.root, m.control)
}

// Close notifies observers, flushes any pending save and releases the
// storage. The model is unusable afterwards.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.notifyBeingDeleted()
	m.closed = true
	m.storage.Close()
	m.storage.SetSerializer(nil)
	m.root = nil
	m.control = nil
	m.state = StateUnloaded
}

// Root returns the synthetic root, or nil until loaded.
func (m *Model) Root() *menu.Node { return m.root }

// AllMenus returns the node holding every top-level menu, or nil until
// loaded.
func (m *Model) AllMenus() *menu.Node {
	if m.root == nil {
		return nil
	}
	return m.root.ChildAt(0)
}

// Menu looks up a top-level menu by resource name.
func (m *Model) Menu(name string) *menu.Node {
	if m.root == nil {
		return nil
	}
	return m.root.ResourceMenu(name)
}

// Control returns a copy of the control metadata, or nil until loaded.
func (m *Model) Control() *menu.Control {
	return m.control.Clone()
}

// FindByID returns the live node with the given session id.
func (m *Model) FindByID(id int64) *menu.Node {
	if m.root == nil {
		return nil
	}
	return m.root.FindByID(id)
}

// FindByGUID returns the live node with the given guid.
func (m *Model) FindByGUID(guid string) *menu.Node {
	if m.root == nil {
		return nil
	}
	return m.root.FindByGUID(guid)
}

func (m *Model) checkLoaded() error {
	if m.closed {
		return ErrClosed
	}
	if m.state != StateLoaded {
		return ErrNotLoaded
	}
	return nil
}

// contains reports whether n is attached below this model's all-menus
// node, or is that node.
func (m *Model) contains(n *menu.Node) bool {
	return n != nil && m.root != nil && n.AllMenus() == m.root.ChildAt(0) && !n.IsRoot()
}

// checkItem validates a node that is about to be edited or removed.
func (m *Model) checkItem(n *menu.Node) error {
	if err := m.checkLoaded(); err != nil {
		return err
	}
	if !m.contains(n) || n.IsAllMenus() {
		return ErrNotInTree
	}
	return nil
}

func menuName(n *menu.Node) string {
	if mn := n.AncestorMenu(); mn != nil {
		return mn.Action
	}
	return ""
}

func idOf(n *menu.Node) *int64 {
	if n == nil {
		return nil
	}
	id := n.ID
	return &id
}

// commit persists and announces a mutation of the named menu.
func (m *Model) commit(selectID *int64, menu string) {
	m.storage.ScheduleSave()
	m.notifyChanged(selectID, menu)
}
