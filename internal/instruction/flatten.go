package instruction

// Filter selects which instructions Flatten returns.
type Filter func(Instruction) bool

// MoveFilter keeps move instructions only.
func MoveFilter(i Instruction) bool { return IsMove(i) }

// PlanFilter keeps plan instructions only.
func PlanFilter(i Instruction) bool { return IsPlan(i) }

// Flatten walks c depth-first and returns the leaves accepted by filter. A nil
// filter accepts every leaf. Composites are descended into, never returned.
// The result holds references into the tree.
func Flatten(c *Composite, filter Filter) []Instruction {
	var out []Instruction
	flattenInto(c, filter, &out)
	return out
}

func flattenInto(c *Composite, filter Filter, out *[]Instruction) {
	if c == nil {
		return
	}
	for _, child := range c.children {
		if sub, ok := child.(*Composite); ok {
			flattenInto(sub, filter, out)
			continue
		}
		if filter == nil || filter(child) {
			*out = append(*out, child)
		}
	}
}

// FlattenMoves is Flatten with MoveFilter and the concrete type preserved.
func FlattenMoves(c *Composite) []*Move {
	flat := Flatten(c, MoveFilter)
	out := make([]*Move, 0, len(flat))
	for _, i := range flat {
		out = append(out, i.(*Move))
	}
	return out
}
