package upgrade

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// ErrInvalidDocument indicates an input that is not a JSON array of objects.
var ErrInvalidDocument = errors.New("upgrade: invalid document")

const (
	keyType     = "type"
	keyGUID     = "guid"
	keyOrigin   = "origin"
	keyChildren = "children"
	keyVersion  = "version"
	keyFormat   = "format"
	keyDeleted  = "deleted"

	typeControl   = "control"
	defaultFormat = "1"
)

// Report summarizes what a merge changed.
type Report struct {
	FromVersion string
	ToVersion   string
	// Added holds guids of bundled nodes inserted into the profile, one
	// entry per inserted subtree root.
	Added []string
	// Removed holds guids of untouched bundled nodes dropped from the profile.
	Removed []string
}

// Changed reports whether the merge altered the tree.
func (r Report) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

type object = map[string]any

// entry locates a profile node. parent is nil for top-level menus.
type entry struct {
	node   object
	parent object
}

type merger struct {
	elems      []any
	control    object
	index      map[string]entry
	tombstones map[string]struct{}
	bundled    map[string]struct{}
	report     Report
}

// Merge folds a newer bundled document into a profile document and
// returns the merged document. Nodes are matched by guid, never by
// position. Bundled nodes missing from the profile are added unless
// tombstoned; profile nodes still tagged Bundled are removed once the
// bundle no longer ships them. Nodes the user touched always survive.
func Merge(profile, bundled []byte) ([]byte, Report, error) {
	profileElems, err := parseDocument(profile)
	if err != nil {
		return nil, Report{}, fmt.Errorf("profile: %w", err)
	}
	bundledElems, err := parseDocument(bundled)
	if err != nil {
		return nil, Report{}, fmt.Errorf("bundled: %w", err)
	}

	bundledControl := findControl(bundledElems)
	toVersion, _ := stringField(bundledControl, keyVersion)
	if _, err := ParseVersion(toVersion); err != nil {
		return nil, Report{}, fmt.Errorf("bundled version: %w", err)
	}

	m := &merger{
		elems:      profileElems,
		index:      make(map[string]entry),
		tombstones: make(map[string]struct{}),
		bundled:    make(map[string]struct{}),
	}
	m.control = findControl(profileElems)
	if m.control == nil {
		format, ok := stringField(bundledControl, keyFormat)
		if !ok {
			format = defaultFormat
		}
		m.control = object{keyType: typeControl, keyFormat: format}
		m.elems = append(m.elems, m.control)
	}
	m.report.FromVersion, _ = stringField(m.control, keyVersion)
	m.report.ToVersion = toVersion

	if deleted, ok := m.control[keyDeleted].([]any); ok {
		for _, d := range deleted {
			if g, ok := d.(string); ok {
				m.tombstones[g] = struct{}{}
			}
		}
	}

	for _, e := range m.elems {
		if obj, ok := e.(object); ok && !isControl(obj) {
			m.indexSubtree(obj, nil)
		}
	}
	collectGUIDs(bundledElems, m.bundled)

	m.addFromBundle(bundledElems, "")
	m.elems = m.removeFromProfile(m.elems)

	m.control[keyVersion] = toVersion
	// Keep the control element last.
	m.elems = slices.DeleteFunc(m.elems, func(e any) bool {
		obj, ok := e.(object)
		return ok && isControl(obj)
	})
	m.elems = append(m.elems, m.control)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m.elems); err != nil {
		return nil, Report{}, fmt.Errorf("upgrade: encode merged document: %w", err)
	}
	return buf.Bytes(), m.report, nil
}

func parseDocument(data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var elems []any
	if err := dec.Decode(&elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	for i, e := range elems {
		if _, ok := e.(object); !ok {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrInvalidDocument, i)
		}
	}
	return elems, nil
}

func findControl(elems []any) object {
	for _, e := range elems {
		if obj, ok := e.(object); ok && isControl(obj) {
			return obj
		}
	}
	return nil
}

func isControl(obj object) bool {
	t, _ := stringField(obj, keyType)
	return t == typeControl
}

func stringField(obj object, key string) (string, bool) {
	if obj == nil {
		return "", false
	}
	s, ok := obj[key].(string)
	return s, ok
}

func guidOf(obj object) string {
	g, _ := stringField(obj, keyGUID)
	return g
}

func childrenOf(obj object) []any {
	c, _ := obj[keyChildren].([]any)
	return c
}

// isBundled reports whether obj still carries the Bundled origin. A
// missing origin means Bundled; an unreadable one is treated as touched.
func isBundled(obj object) bool {
	raw, ok := obj[keyOrigin]
	if !ok {
		return true
	}
	var s string
	switch v := raw.(type) {
	case json.Number:
		s = v.String()
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && n == 0
}

func (m *merger) indexSubtree(obj, parent object) {
	if g := guidOf(obj); g != "" {
		m.index[g] = entry{node: obj, parent: parent}
	}
	for _, c := range childrenOf(obj) {
		if co, ok := c.(object); ok {
			m.indexSubtree(co, obj)
		}
	}
}

func collectGUIDs(nodes []any, into map[string]struct{}) {
	for _, n := range nodes {
		obj, ok := n.(object)
		if !ok || isControl(obj) {
			continue
		}
		if g := guidOf(obj); g != "" {
			into[g] = struct{}{}
		}
		collectGUIDs(childrenOf(obj), into)
	}
}

func (m *merger) known(guid string) bool {
	if _, ok := m.index[guid]; ok {
		return true
	}
	_, ok := m.tombstones[guid]
	return ok
}

// addFromBundle walks the bundle in pre-order. parentGUID is empty for
// top-level menus.
func (m *merger) addFromBundle(nodes []any, parentGUID string) {
	for i, n := range nodes {
		obj, ok := n.(object)
		if !ok || isControl(obj) {
			continue
		}
		g := guidOf(obj)
		if g == "" {
			continue
		}
		if !m.known(g) {
			m.insert(obj, parentGUID, i)
		}
		m.addFromBundle(childrenOf(obj), g)
	}
}

func (m *merger) insert(bundledNode object, parentGUID string, index int) {
	clone := m.cloneUnknown(bundledNode)

	if parentGUID == "" {
		if m.hasMenuAction(clone) {
			return
		}
		m.elems = append(m.elems, clone)
		m.indexSubtree(clone, nil)
		m.report.Added = append(m.report.Added, guidOf(clone))
		return
	}

	parent, ok := m.index[parentGUID]
	if !ok {
		// The parent was removed by the user; its new content goes with it.
		return
	}
	children := childrenOf(parent.node)
	index = max(0, min(index, len(children)))
	parent.node[keyChildren] = slices.Insert(children, index, any(clone))
	m.indexSubtree(clone, parent.node)
	m.report.Added = append(m.report.Added, guidOf(clone))
}

// hasMenuAction reports whether a top-level profile menu already uses the
// action of menuNode. Menu actions are resource names and must stay unique.
func (m *merger) hasMenuAction(menuNode object) bool {
	action, _ := stringField(menuNode, "action")
	for _, e := range m.elems {
		obj, ok := e.(object)
		if !ok || isControl(obj) {
			continue
		}
		if a, _ := stringField(obj, "action"); a == action {
			return true
		}
	}
	return false
}

// cloneUnknown deep-copies a bundled node, dropping descendants whose guid
// already lives in the profile or is tombstoned so the merge never
// duplicates a guid or resurrects a deleted item.
func (m *merger) cloneUnknown(obj object) object {
	out := maps.Clone(obj)
	if kids, ok := obj[keyChildren].([]any); ok {
		copied := make([]any, 0, len(kids))
		for _, k := range kids {
			ko, ok := k.(object)
			if !ok {
				continue
			}
			if g := guidOf(ko); g != "" && m.known(g) {
				continue
			}
			copied = append(copied, m.cloneUnknown(ko))
		}
		out[keyChildren] = copied
	}
	return out
}

// removeFromProfile drops untouched bundled nodes the new bundle no
// longer ships and returns the filtered slice.
func (m *merger) removeFromProfile(nodes []any) []any {
	out := nodes[:0]
	for _, n := range nodes {
		obj, ok := n.(object)
		if !ok || isControl(obj) {
			out = append(out, n)
			continue
		}
		g := guidOf(obj)
		if _, shipped := m.bundled[g]; !shipped && isBundled(obj) && !hasTouchedDescendant(obj) {
			m.report.Removed = append(m.report.Removed, g)
			continue
		}
		if kids, ok := obj[keyChildren].([]any); ok {
			obj[keyChildren] = m.removeFromProfile(kids)
		}
		out = append(out, n)
	}
	return out
}

func hasTouchedDescendant(obj object) bool {
	for _, c := range childrenOf(obj) {
		co, ok := c.(object)
		if !ok {
			continue
		}
		if !isBundled(co) || hasTouchedDescendant(co) {
			return true
		}
	}
	return false
}
