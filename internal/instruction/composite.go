package instruction

import (
	"fmt"
	"slices"
)

// CompositeOrder describes how the children of a composite may be executed.
type CompositeOrder int

const (
	Ordered CompositeOrder = iota
	Unordered
	OrderedAndReversible
)

func (o CompositeOrder) String() string {
	switch o {
	case Ordered:
		return "ordered"
	case Unordered:
		return "unordered"
	case OrderedAndReversible:
		return "ordered_and_reversible"
	default:
		return fmt.Sprintf("CompositeOrder(%d)", int(o))
	}
}

// ParseCompositeOrder is the inverse of CompositeOrder.String.
func ParseCompositeOrder(s string) (CompositeOrder, error) {
	for _, o := range []CompositeOrder{Ordered, Unordered, OrderedAndReversible} {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown composite order %q", s)
}

// Composite is an ordered sequence of instructions, possibly nested. It never
// holds a waypoint of its own.
type Composite struct {
	Header
	Order    CompositeOrder
	children []Instruction
}

// NewComposite creates an ordered composite with the default profile.
func NewComposite(children ...Instruction) *Composite {
	return &Composite{Header: newHeader(), children: slices.Clone(children)}
}

func (*Composite) Kind() Kind      { return CompositeKind }
func (c *Composite) Meta() *Header { return &c.Header }
func (*Composite) isInstruction()  {}
func (c *Composite) Len() int      { return len(c.children) }
func (c *Composite) IsEmpty() bool { return len(c.children) == 0 }

// At returns the child at index i.
func (c *Composite) At(i int) (Instruction, error) {
	if i < 0 || i >= len(c.children) {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, len(c.children))
	}
	return c.children[i], nil
}

// Set replaces the child at index i.
func (c *Composite) Set(i int, instr Instruction) error {
	if i < 0 || i >= len(c.children) {
		return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, len(c.children))
	}
	c.children[i] = instr
	return nil
}

// Append adds children at the end.
func (c *Composite) Append(instrs ...Instruction) {
	c.children = append(c.children, instrs...)
}

// Children returns a copy of the child slice. The children themselves are shared.
func (c *Composite) Children() []Instruction {
	return slices.Clone(c.children)
}

// SetChildren replaces all children.
func (c *Composite) SetChildren(instrs []Instruction) {
	c.children = slices.Clone(instrs)
}

// Clear removes all children.
func (c *Composite) Clear() {
	c.children = nil
}

// Front returns the first child.
func (c *Composite) Front() (Instruction, bool) {
	if len(c.children) == 0 {
		return nil, false
	}
	return c.children[0], true
}

// Back returns the last child.
func (c *Composite) Back() (Instruction, bool) {
	if len(c.children) == 0 {
		return nil, false
	}
	return c.children[len(c.children)-1], true
}

// Clone duplicates the whole subtree, including override maps. Override
// values are shared.
func (c *Composite) Clone() Instruction {
	out := &Composite{Header: c.Header.clone(), Order: c.Order}
	if c.children != nil {
		out.children = make([]Instruction, len(c.children))
		for i, child := range c.children {
			out.children[i] = child.Clone()
		}
	}
	return out
}

// CloneComposite is Clone with the concrete type preserved.
func (c *Composite) CloneComposite() *Composite {
	return c.Clone().(*Composite)
}

func (c *Composite) Equal(other Instruction) bool {
	o, ok := other.(*Composite)
	if !ok {
		return false
	}
	if c.Order != o.Order || !c.Header.equal(&o.Header) || len(c.children) != len(o.children) {
		return false
	}
	for i := range c.children {
		if !c.children[i].Equal(o.children[i]) {
			return false
		}
	}
	return true
}

// Validate checks structural invariants of the whole subtree: a start move or
// plan may only be the first child of its composite.
func (c *Composite) Validate() error {
	for i, child := range c.children {
		switch v := child.(type) {
		case *Move:
			if v.IsStart() && i != 0 {
				return fmt.Errorf("%w: move at index %d", ErrStartNotFirst, i)
			}
		case *Plan:
			if v.IsStart() && i != 0 {
				return fmt.Errorf("%w: plan at index %d", ErrStartNotFirst, i)
			}
		case *Composite:
			if err := v.Validate(); err != nil {
				return fmt.Errorf("child %d: %w", i, err)
			}
		}
	}
	return nil
}
