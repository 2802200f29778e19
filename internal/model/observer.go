package model

import "slices"

// Observer receives model notifications on the owning goroutine.
type Observer interface {
	// Loaded fires once the tree is available.
	Loaded(m *Model)
	// Reset fires after a factory reset. all is set when every menu was
	// replaced.
	Reset(m *Model, all bool)
	// Changed fires after a mutation of the named menu. selectID, when
	// non-nil, is the node the UI should select.
	Changed(m *Model, selectID *int64, menu string)
	// BeingDeleted fires before the model tears down.
	BeingDeleted(m *Model)
}

// ObserverFuncs adapts optional functions to Observer. Nil fields are
// skipped.
type ObserverFuncs struct {
	OnLoaded       func(m *Model)
	OnReset        func(m *Model, all bool)
	OnChanged      func(m *Model, selectID *int64, menu string)
	OnBeingDeleted func(m *Model)
}

var _ Observer = ObserverFuncs{}

func (f ObserverFuncs) Loaded(m *Model) {
	if f.OnLoaded != nil {
		f.OnLoaded(m)
	}
}

func (f ObserverFuncs) Reset(m *Model, all bool) {
	if f.OnReset != nil {
		f.OnReset(m, all)
	}
}

func (f ObserverFuncs) Changed(m *Model, selectID *int64, menu string) {
	if f.OnChanged != nil {
		f.OnChanged(m, selectID, menu)
	}
}

func (f ObserverFuncs) BeingDeleted(m *Model) {
	if f.OnBeingDeleted != nil {
		f.OnBeingDeleted(m)
	}
}

// Subscription identifies a registered observer.
type Subscription uint64

type subscriber struct {
	id  Subscription
	obs Observer
}

type registry struct {
	next Subscription
	subs []subscriber
}

func (r *registry) add(obs Observer) Subscription {
	r.next++
	r.subs = append(r.subs, subscriber{id: r.next, obs: obs})
	return r.next
}

func (r *registry) remove(id Subscription) bool {
	i := slices.IndexFunc(r.subs, func(s subscriber) bool { return s.id == id })
	if i < 0 {
		return false
	}
	r.subs = slices.Delete(r.subs, i, i+1)
	return true
}

func (r *registry) has(id Subscription) bool {
	return slices.ContainsFunc(r.subs, func(s subscriber) bool { return s.id == id })
}

// each calls fn for a snapshot of the subscribers. Observers removed
// during dispatch are skipped; observers added during dispatch wait for
// the next notification.
func (r *registry) each(fn func(Observer)) {
	for _, s := range slices.Clone(r.subs) {
		if r.has(s.id) {
			fn(s.obs)
		}
	}
}

// AddObserver registers obs and returns its subscription.
func (m *Model) AddObserver(obs Observer) Subscription {
	return m.observers.add(obs)
}

// RemoveObserver unregisters a subscription. It is safe to call from
// inside a notification. It reports whether the subscription existed.
func (m *Model) RemoveObserver(id Subscription) bool {
	return m.observers.remove(id)
}

func (m *Model) notifyLoaded() {
	m.observers.each(func(o Observer) { o.Loaded(m) })
}

func (m *Model) notifyReset(all bool) {
	m.observers.each(func(o Observer) { o.Reset(m, all) })
}

func (m *Model) notifyChanged(selectID *int64, menu string) {
	m.observers.each(func(o Observer) { o.Changed(m, selectID, menu) })
}

func (m *Model) notifyBeingDeleted() {
	m.observers.each(func(o Observer) { o.BeingDeleted(m) })
}
