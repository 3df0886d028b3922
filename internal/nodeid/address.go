package nodeid

import (
	"fmt"
	"slices"
	"strings"
)

// String serializes the Address into its canonical path string representation.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	var sb strings.Builder
	for i, segment := range a.Path {
		if i > 0 {
			sb.WriteRune('.')
		}
		sb.WriteString(segment.Name)
		if segment.HasIndex() {
			sb.WriteString(fmt.Sprintf("[%d]", segment.Index))
		}
	}

	return sb.String()
}

// Equal checks for deep equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return slices.Equal(a.Path, other.Path)
}

// Child returns a new address with seg appended. The receiver is not modified.
func (a *Address) Child(seg PathSegment) *Address {
	if a == nil {
		return New(seg)
	}
	return New(append(slices.Clone(a.Path), seg)...)
}

// Under returns a new address with prefix prepended to the receiver's path.
func (a *Address) Under(prefix *Address) *Address {
	if prefix == nil {
		return New(a.Path...)
	}
	if a == nil {
		return New(prefix.Path...)
	}
	return New(append(slices.Clone(prefix.Path), a.Path...)...)
}

// Last returns the final segment of the address.
func (a *Address) Last() (PathSegment, bool) {
	if a == nil || len(a.Path) == 0 {
		return PathSegment{}, false
	}
	return a.Path[len(a.Path)-1], true
}
