package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/menukit/menustore/internal/menu"
)

const (
	typeControl = "control"

	// DefaultFormat is written to documents that carry no format tag.
	DefaultFormat = "1"
)

// jsonNode is the persisted shape of one menu node.
type jsonNode struct {
	Type          string      `json:"type"`
	GUID          string      `json:"guid,omitempty"`
	Action        string      `json:"action,omitempty"`
	Parameter     string      `json:"parameter,omitempty"`
	Title         *string     `json:"title,omitempty"`
	Origin        *int        `json:"origin,omitempty"`
	Role          string      `json:"role,omitempty"`
	RadioGroup    string      `json:"radiogroup,omitempty"`
	ContainerMode string      `json:"containermode,omitempty"`
	ContainerEdge string      `json:"containeredge,omitempty"`
	ShowShortcut  *bool       `json:"showshortcut,omitempty"`
	Children      *[]jsonNode `json:"children,omitempty"`
}

// jsonControl is the persisted shape of the control element.
type jsonControl struct {
	Type    string   `json:"type"`
	Format  string   `json:"format,omitempty"`
	Version string   `json:"version,omitempty"`
	Deleted []string `json:"deleted,omitempty"`
}

// Options tune Decode.
type Options struct {
	// Bundle marks a factory-default source. Every node decodes with
	// origin Bundled whatever the file says.
	Bundle bool
	// ForceVersion replaces the control version when non-empty.
	ForceVersion string
	// IDs allocates in-session ids. menu.DefaultIDs is used when nil.
	IDs menu.IDAllocator
}

type decoder struct {
	opts  Options
	guids map[string]struct{}
}

// Decode parses a persisted document into a fresh tree rooted at the
// synthetic root node. Any violation rejects the whole document.
func Decode(data []byte, opts Options) (*menu.Node, *menu.Control, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, nil, &ParseError{Message: "document is not a JSON array", Err: err}
	}
	if elems == nil {
		return nil, nil, &ParseError{Message: "document is not a JSON array"}
	}

	d := &decoder{opts: opts, guids: map[string]struct{}{
		menu.RootGUID:     {},
		menu.AllMenusGUID: {},
	}}
	root := menu.NewRoot()
	all := root.ChildAt(0)
	control := &menu.Control{}
	sawControl := false
	actions := make(map[string]struct{})

	for i, raw := range elems {
		path := fmt.Sprintf("[%d]", i)
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &head); err != nil {
			return nil, nil, &ParseError{Path: path, Message: "element is not an object", Err: err}
		}

		switch head.Type {
		case typeControl:
			if sawControl {
				return nil, nil, parseErrorf(path, "duplicate control element")
			}
			sawControl = true
			var jc jsonControl
			if err := json.Unmarshal(raw, &jc); err != nil {
				return nil, nil, &ParseError{Path: path, Message: "malformed control element", Err: err}
			}
			control.Format = jc.Format
			control.Version = jc.Version
			control.Deleted = jc.Deleted
		case menu.KindMenu.String():
			var jn jsonNode
			if err := json.Unmarshal(raw, &jn); err != nil {
				return nil, nil, &ParseError{Path: path, Message: "malformed menu element", Err: err}
			}
			node, err := d.node(&jn, nil, path)
			if err != nil {
				return nil, nil, err
			}
			if _, dup := actions[node.Action]; dup {
				return nil, nil, parseErrorf(path, "duplicate menu %q", node.Action)
			}
			actions[node.Action] = struct{}{}
			all.Add(node, all.Len())
		case "":
			return nil, nil, parseErrorf(path, "element has no type")
		default:
			return nil, nil, parseErrorf(path, "unexpected top-level element type %q", head.Type)
		}
	}

	if d.opts.ForceVersion != "" {
		control.Version = d.opts.ForceVersion
	}
	return root, control, nil
}

// node converts one persisted node and its subtree. parent is nil for
// top-level menus.
func (d *decoder) node(jn *jsonNode, parent *menu.Node, path string) (*menu.Node, error) {
	kind, ok := menu.ParseKind(jn.Type)
	if !ok {
		return nil, parseErrorf(path, "unknown node type %q", jn.Type)
	}
	if parent == nil && kind != menu.KindMenu {
		return nil, parseErrorf(path, "top-level element must be a menu")
	}
	if parent != nil && kind == menu.KindMenu {
		return nil, parseErrorf(path, "menu is only allowed at top level")
	}

	if !menu.IsValidGUID(jn.GUID) {
		return nil, parseErrorf(path, "invalid guid %q", jn.GUID)
	}
	if _, seen := d.guids[jn.GUID]; seen {
		return nil, parseErrorf(path, "duplicate guid %s", jn.GUID)
	}
	d.guids[jn.GUID] = struct{}{}

	n := menu.NewNode(d.opts.IDs, jn.GUID, kind)

	origin := menu.OriginBundled
	if jn.Origin != nil && !d.opts.Bundle {
		origin = menu.Origin(*jn.Origin)
		if !origin.Valid() {
			return nil, parseErrorf(path, "invalid origin %d", *jn.Origin)
		}
	}
	n.Origin = origin

	if kind != menu.KindSeparator {
		n.Action = jn.Action
	}
	n.Parameter = jn.Parameter
	if jn.Title != nil {
		n.Title = *jn.Title
		n.HasCustomTitle = true
	}

	switch kind {
	case menu.KindMenu:
		n.Role = jn.Role
	case menu.KindRadio:
		n.RadioGroup = jn.RadioGroup
	case menu.KindContainer:
		n.ContainerMode = menu.ContainerMode(jn.ContainerMode)
		n.ContainerEdge = menu.ContainerEdge(jn.ContainerEdge)
	}
	if err := n.Validate(); err != nil {
		return nil, &ParseError{Path: path, Message: "invalid node", Err: err}
	}

	// Inherited at construction, overridden by an explicit value.
	if parent != nil && parent.ShowShortcut != nil {
		n.ShowShortcut = menu.Bool(*parent.ShowShortcut)
	}
	if jn.ShowShortcut != nil {
		n.ShowShortcut = menu.Bool(*jn.ShowShortcut)
	}

	if jn.Children != nil {
		if !n.CanHaveChildren() {
			return nil, parseErrorf(path, "%s cannot have children", kind)
		}
		for i := range *jn.Children {
			child, err := d.node(&(*jn.Children)[i], n, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return nil, err
			}
			n.Add(child, n.Len())
		}
	}
	return n, nil
}

// Encode serializes the tree below root's all-menus node followed by the
// control element. root may be the synthetic root or the all-menus node.
func Encode(root *menu.Node, control *menu.Control) ([]byte, error) {
	all := root
	if root.IsRoot() {
		all = root.ChildAt(0)
	}
	if all == nil || !all.IsAllMenus() {
		return nil, fmt.Errorf("codec: encode: tree has no all-menus node")
	}

	elems := make([]any, 0, all.Len()+1)
	for _, m := range all.Children() {
		elems = append(elems, encodeNode(m))
	}

	jc := jsonControl{Type: typeControl, Format: DefaultFormat}
	if control != nil {
		if control.Format != "" {
			jc.Format = control.Format
		}
		jc.Version = control.Version
		jc.Deleted = control.Deleted
	}
	elems = append(elems, jc)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(elems); err != nil {
		return nil, fmt.Errorf("codec: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeNode(n *menu.Node) jsonNode {
	jn := jsonNode{
		Type:      n.Kind.String(),
		GUID:      n.GUID,
		Parameter: n.Parameter,
	}
	if n.Kind != menu.KindSeparator {
		jn.Action = n.Action
	}
	if n.HasCustomTitle {
		title := n.Title
		jn.Title = &title
	}
	if n.Origin != menu.OriginBundled {
		origin := int(n.Origin)
		jn.Origin = &origin
	}
	if n.ShowShortcut != nil {
		jn.ShowShortcut = menu.Bool(*n.ShowShortcut)
	}
	switch n.Kind {
	case menu.KindMenu:
		jn.Role = n.Role
	case menu.KindRadio:
		jn.RadioGroup = n.RadioGroup
	case menu.KindContainer:
		jn.ContainerMode = string(n.ContainerMode)
		jn.ContainerEdge = string(n.ContainerEdge)
	}
	if n.CanHaveChildren() {
		children := make([]jsonNode, 0, n.Len())
		for _, c := range n.Children() {
			children = append(children, encodeNode(c))
		}
		jn.Children = &children
	}
	return jn
}

// ReadVersion extracts the control version without building a tree.
func ReadVersion(data []byte) (string, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return "", &ParseError{Message: "document is not a JSON array", Err: err}
	}
	for _, raw := range elems {
		var jc jsonControl
		if err := json.Unmarshal(raw, &jc); err != nil {
			continue
		}
		if jc.Type == typeControl {
			return jc.Version, nil
		}
	}
	return "", ErrNoControl
}
