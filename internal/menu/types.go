// Package menu defines the in-memory menu tree: nodes with stable guids,
// provenance tags, and the control metadata persisted next to the tree.
package menu

import "fmt"

// Kind identifies what a node represents in a menu.
type Kind int

const (
	// KindMenu is a named top-level menu (main menu bar, a context menu).
	KindMenu Kind = iota
	// KindCommand is a plain command item.
	KindCommand
	// KindCheckbox is a toggleable command item.
	KindCheckbox
	// KindRadio is a command item that is exclusive within its radio group.
	KindRadio
	// KindFolder is a submenu.
	KindFolder
	// KindSeparator is a visual divider. It carries no action.
	KindSeparator
	// KindContainer expands to dynamic content supplied by the UI.
	KindContainer
)

var kindNames = [...]string{
	KindMenu:      "menu",
	KindCommand:   "command",
	KindCheckbox:  "checkbox",
	KindRadio:     "radio",
	KindFolder:    "folder",
	KindSeparator: "separator",
	KindContainer: "container",
}

// String returns the persisted name of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind maps a persisted kind name to a Kind.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Origin records where a node came from. It drives upgrade decisions.
type Origin int

const (
	// OriginBundled marks a node shipped with the application and untouched by the user.
	OriginBundled Origin = iota
	// OriginModifiedBundled marks a bundled node the user has edited.
	OriginModifiedBundled
	// OriginUser marks a node created by the user.
	OriginUser
)

// Valid reports whether o is one of the known origins.
func (o Origin) Valid() bool {
	return o >= OriginBundled && o <= OriginUser
}

// String returns a readable name for the origin.
func (o Origin) String() string {
	switch o {
	case OriginBundled:
		return "bundled"
	case OriginModifiedBundled:
		return "modified"
	case OriginUser:
		return "user"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// ContainerMode controls how a container presents its content.
type ContainerMode string

const (
	ContainerModeInline ContainerMode = "inline"
	ContainerModeFolder ContainerMode = "folder"
)

// Valid reports whether m is a known container mode.
func (m ContainerMode) Valid() bool {
	return m == ContainerModeInline || m == ContainerModeFolder
}

// ContainerEdge controls where an inline container draws a separator.
type ContainerEdge string

const (
	ContainerEdgeAbove ContainerEdge = "above"
	ContainerEdgeBelow ContainerEdge = "below"
	ContainerEdgeOff   ContainerEdge = "off"
)

// Valid reports whether e is a known container edge.
func (e ContainerEdge) Valid() bool {
	switch e {
	case ContainerEdgeAbove, ContainerEdgeBelow, ContainerEdgeOff:
		return true
	}
	return false
}
