package instruction

import (
	"fmt"
	"strings"
)

// Describe renders an instruction tree as indented text for debug logging.
func Describe(i Instruction) string {
	var b strings.Builder
	describe(&b, i, 0)
	return b.String()
}

func describe(b *strings.Builder, i Instruction, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v := i.(type) {
	case *Composite:
		fmt.Fprintf(b, "%scomposite profile=%s order=%s len=%d", indent, v.Profile, v.Order, v.Len())
		if v.Description != "" {
			fmt.Fprintf(b, " %q", v.Description)
		}
		b.WriteByte('\n')
		for _, child := range v.children {
			describe(b, child, depth+1)
		}
	case *Move:
		fmt.Fprintf(b, "%smove %s profile=%s %s\n", indent, v.Type, v.Profile, describeWaypoint(v.Waypoint()))
	case *Plan:
		fmt.Fprintf(b, "%splan %s profile=%s %s\n", indent, v.Type, v.Profile, describeWaypoint(v.Waypoint()))
	default:
		fmt.Fprintf(b, "%s%T\n", indent, i)
	}
}

func describeWaypoint(w Waypoint) string {
	switch wp := w.(type) {
	case *JointWaypoint:
		return fmt.Sprintf("joint%v", wp.Position)
	case *StateWaypoint:
		return fmt.Sprintf("state%v t=%.4f", wp.Position, wp.Time)
	case *CartesianWaypoint:
		return fmt.Sprintf("cartesian(%g,%g,%g)", wp.Position.X, wp.Position.Y, wp.Position.Z)
	default:
		return "null"
	}
}
