package reorder

import (
	"fmt"
	"strings"
)

type Edge string

const (
	Before Edge = "before"
	After  Edge = "after"
)

// ParseEdge accepts before/after and the top/bottom synonyms used by
// drag-and-drop adapters.
func ParseEdge(s string) (Edge, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "before", "top":
		return Before, nil
	case "after", "bottom":
		return After, nil
	default:
		return "", fmt.Errorf("unknown edge %q", s)
	}
}

// Move returns a new slice with the item at source moved to the edge side of
// the item at target. Indices refer to positions before the move. The input
// is never modified.
func Move[T any](items []T, source, target int, edge Edge) ([]T, error) {
	n := len(items)
	if source < 0 || source >= n || target < 0 || target >= n {
		return nil, fmt.Errorf("reorder %d -> %d: index out of range [0,%d)", source, target, n)
	}
	if edge != Before && edge != After {
		return nil, fmt.Errorf("reorder: unknown edge %q", edge)
	}

	out := make([]T, n)
	copy(out, items)
	if source == target {
		return out, nil
	}

	insert := target
	if edge == After {
		insert = target + 1
	}
	// removing source shifts everything after it down by one
	if source < target {
		insert--
	}

	moved := out[source]
	out = append(out[:source], out[source+1:]...)
	out = append(out[:insert], append([]T{moved}, out[insert:]...)...)
	return out, nil
}
