package totg

import (
	"fmt"

	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/process"
)

// RescaleTimings speeds up segment i of program by factors[i]. For every
// state waypoint directly inside a segment, velocity is multiplied by the
// factor, acceleration and effort by its square, and the time since the
// previous state is divided by it. Times stay cumulative across segments.
//
// program must have one factor per child, every child must be a composite
// and every factor must be positive. Nothing is modified when a check fails.
func RescaleTimings(program *instruction.Composite, factors []float64) error {
	if len(factors) != program.Len() {
		return fmt.Errorf("%w: %d scaling factors for %d segments", process.ErrContract, len(factors), program.Len())
	}
	segments := make([]*instruction.Composite, program.Len())
	for i, child := range program.Children() {
		seg, err := instruction.AsComposite(child)
		if err != nil {
			return fmt.Errorf("%w: segment %d: %v", process.ErrContract, i, err)
		}
		if !(factors[i] > 0) {
			return fmt.Errorf("%w: scaling factor %d is %g, must be positive", process.ErrContract, i, factors[i])
		}
		segments[i] = seg
	}

	var prevOriginal, prevScaled float64
	for i, seg := range segments {
		f := factors[i]
		for _, child := range seg.Children() {
			m, ok := child.(*instruction.Move)
			if !ok {
				continue
			}
			st, ok := m.Waypoint().(*instruction.StateWaypoint)
			if !ok {
				continue
			}
			scale(st.Velocity, f)
			scale(st.Acceleration, f*f)
			scale(st.Effort, f*f)

			scaled := prevScaled + (st.Time-prevOriginal)/f
			prevOriginal, prevScaled = st.Time, scaled
			st.Time = scaled
		}
	}
	return nil
}

func scale(v []float64, f float64) {
	for i := range v {
		v[i] *= f
	}
}
