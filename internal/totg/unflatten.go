package totg

import (
	"fmt"
	"math"

	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/process"
)

// Unflatten distributes the leaves of flat over copies of pattern's
// segments. Each pattern child must be a composite whose last move has a
// joint position. Points are appended to the current segment; once a point
// lies within tolerance of the current segment's original end point on every
// joint, later points go to the next segment. Points after the last
// segment's end stay in the last segment.
//
// The match is by proximity only, so segments whose end points are closer
// than tolerance to other points of the path can be split in the wrong
// place.
func Unflatten(flat, pattern *instruction.Composite, tolerance float64) (*instruction.Composite, error) {
	out := pattern.CloneComposite()
	segments := make([]*instruction.Composite, out.Len())
	ends := make([][]float64, out.Len())
	for i, child := range out.Children() {
		seg, err := instruction.AsComposite(child)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %d: %v", process.ErrInputShape, i, err)
		}
		end, err := segmentEnd(seg)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %d: %v", process.ErrInputShape, i, err)
		}
		seg.Clear()
		segments[i] = seg
		ends[i] = end
	}
	if len(segments) == 0 {
		return out, nil
	}

	current := 0
	for _, instr := range instruction.Flatten(flat, nil) {
		segments[current].Append(instr)

		m, ok := instr.(*instruction.Move)
		if !ok || current == len(segments)-1 {
			continue
		}
		pos, err := instruction.JointPosition(m.Waypoint())
		if err != nil {
			continue
		}
		if withinTolerance(pos, ends[current], tolerance) {
			current++
			segments[current].Clear()
		}
	}
	return out, nil
}

func segmentEnd(seg *instruction.Composite) ([]float64, error) {
	moves := instruction.FlattenMoves(seg)
	if len(moves) == 0 {
		return nil, fmt.Errorf("no move to mark the segment end")
	}
	return instruction.JointPosition(moves[len(moves)-1].Waypoint())
}

func withinTolerance(a, b []float64, tolerance float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !(math.Abs(a[i]-b[i]) < tolerance) {
			return false
		}
	}
	return true
}
