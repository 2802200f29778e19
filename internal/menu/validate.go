package menu

import (
	"errors"
	"fmt"
)

// ErrInvalidNode is returned by Validate.
var ErrInvalidNode = errors.New("menu: invalid node")

// InvalidNodeError describes why a node cannot be persisted.
type InvalidNodeError struct {
	Kind   Kind
	Reason string
}

func (e *InvalidNodeError) Error() string {
	return fmt.Sprintf("%s %s", e.Kind, e.Reason)
}

// Is matches ErrInvalidNode.
func (e *InvalidNodeError) Is(target error) bool { return target == ErrInvalidNode }

// Validate checks the fields n's kind requires. It does not descend into
// children; callers that need the whole subtree walk it.
func (n *Node) Validate() error {
	invalid := func(format string, args ...any) error {
		return &InvalidNodeError{Kind: n.Kind, Reason: fmt.Sprintf(format, args...)}
	}

	if n.Kind < KindMenu || n.Kind > KindContainer {
		return invalid("is not a known kind")
	}
	if n.Kind != KindSeparator && n.Action == "" {
		return invalid("requires an action")
	}
	if len(n.children) > 0 && !n.CanHaveChildren() {
		return invalid("cannot have children")
	}

	switch n.Kind {
	case KindMenu:
		if n.Role == "" {
			return invalid("requires a role")
		}
	case KindRadio:
		if n.RadioGroup == "" {
			return invalid("requires a radiogroup")
		}
	case KindContainer:
		if !n.ContainerMode.Valid() {
			return invalid("has invalid containermode %q", n.ContainerMode)
		}
		if n.ContainerEdge != "" && !n.ContainerEdge.Valid() {
			return invalid("has invalid containeredge %q", n.ContainerEdge)
		}
	}
	return nil
}
