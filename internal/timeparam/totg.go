package timeparam

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/vk/planflow/internal/ctxlog"
	"github.com/vk/planflow/internal/instruction"
	"gonum.org/v1/gonum/floats"
)

// minSegmentLength is the arc length below which two points are treated as
// the same configuration.
const minSegmentLength = 1e-12

// TOTG is a time-optimal parameterization of piecewise-linear joint paths.
type TOTG struct {
	Params
}

func NewTOTG(p Params) *TOTG {
	return &TOTG{Params: p}
}

// point is one kept path vertex.
type point struct {
	move     *instruction.Move
	names    []string
	position []float64
}

// ComputeTimeStamps implements Solver.
func (s *TOTG) ComputeTimeStamps(ctx context.Context, trajectory *instruction.Composite, velLimits, accLimits []float64, velScale, accScale float64) error {
	logger := ctxlog.FromContext(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	if trajectory == nil {
		return fmt.Errorf("%w: nil trajectory", ErrInfeasible)
	}
	vmax, amax, err := scaledLimits(velLimits, accLimits, velScale, accScale)
	if err != nil {
		return err
	}

	moves := instruction.FlattenMoves(trajectory)
	if len(moves) == 0 {
		logger.Debug("Nothing to time parameterize.")
		return nil
	}
	points, err := s.keptPoints(moves, len(vmax))
	if err != nil {
		return err
	}

	segs := s.timeSegments(points, vmax, amax)
	out := s.emit(points, segs)
	trajectory.SetChildren(out)

	logger.Debug("Time parameterization complete.",
		"input_points", len(moves),
		"kept_points", len(points),
		"output_points", len(out),
		"duration", segs.duration(),
	)
	return nil
}

func scaledLimits(vel, acc []float64, velScale, accScale float64) ([]float64, []float64, error) {
	if len(vel) == 0 || len(vel) != len(acc) {
		return nil, nil, fmt.Errorf("%w: %d velocity and %d acceleration limits", ErrInfeasible, len(vel), len(acc))
	}
	if !(velScale > 0) || !(accScale > 0) {
		return nil, nil, fmt.Errorf("%w: scaling factors must be positive (velocity=%g, acceleration=%g)", ErrInfeasible, velScale, accScale)
	}
	vmax := make([]float64, len(vel))
	amax := make([]float64, len(acc))
	floats.ScaleTo(vmax, velScale, vel)
	floats.ScaleTo(amax, accScale, acc)
	for i := range vmax {
		if !(vmax[i] > 0) || !(amax[i] > 0) || math.IsInf(vmax[i], 0) || math.IsInf(amax[i], 0) {
			return nil, nil, fmt.Errorf("%w: joint %d has limits velocity=%g acceleration=%g", ErrInfeasible, i, vmax[i], amax[i])
		}
	}
	return vmax, amax, nil
}

// keptPoints extracts joint positions and drops points that move no joint by
// at least MinAngleChange from the previously kept one. The last point always
// survives.
func (s *TOTG) keptPoints(moves []*instruction.Move, dim int) ([]point, error) {
	var pts []point
	for i, m := range moves {
		pos, err := instruction.JointPosition(m.Waypoint())
		if err != nil {
			return nil, fmt.Errorf("%w: move %d: %v", ErrInfeasible, i, err)
		}
		if len(pos) != dim {
			return nil, fmt.Errorf("%w: move %d has %d joints, limits have %d", ErrInfeasible, i, len(pos), dim)
		}
		if floats.HasNaN(pos) {
			return nil, fmt.Errorf("%w: move %d has NaN position", ErrInfeasible, i)
		}
		names, _ := instruction.JointNames(m.Waypoint())
		p := point{move: m, names: names, position: pos}

		if len(pts) == 0 {
			pts = append(pts, p)
			continue
		}
		change := floats.Distance(pos, pts[len(pts)-1].position, math.Inf(1))
		switch {
		case change >= s.MinAngleChange:
			pts = append(pts, p)
		case i == len(moves)-1 && len(pts) > 1:
			pts[len(pts)-1] = p
		case i == len(moves)-1:
			pts = append(pts, p)
		}
	}
	return pts, nil
}

type timeline []segment

func (t timeline) duration() float64 {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].end()
}

// timeSegments runs the forward and backward passes over the kept vertices
// and times each straight piece.
func (s *TOTG) timeSegments(pts []point, vmax, amax []float64) timeline {
	n := len(pts) - 1
	if n <= 0 {
		return nil
	}
	dir := make([][]float64, n)
	length := make([]float64, n)
	segV := make([]float64, n)
	segA := make([]float64, n)
	for j := 0; j < n; j++ {
		d := make([]float64, len(vmax))
		floats.SubTo(d, pts[j+1].position, pts[j].position)
		l := floats.Norm(d, 2)
		length[j] = l
		if l > minSegmentLength {
			floats.Scale(1/l, d)
		}
		dir[j] = d
		segV[j], segA[j] = pathBounds(d, vmax, amax)
	}

	limit := make([]float64, n+1)
	for j := 1; j < n; j++ {
		limit[j] = math.Min(math.Min(segV[j-1], segV[j]), s.cornerLimit(dir[j-1], dir[j], length[j-1], length[j], math.Min(segA[j-1], segA[j])))
	}

	speed := make([]float64, n+1)
	for j := 0; j < n; j++ {
		speed[j+1] = math.Min(limit[j+1], math.Sqrt(speed[j]*speed[j]+2*segA[j]*length[j]))
	}
	for j := n - 1; j >= 0; j-- {
		speed[j] = math.Min(speed[j], math.Sqrt(speed[j+1]*speed[j+1]+2*segA[j]*length[j]))
	}

	segs := make(timeline, n)
	start := 0.0
	for j := 0; j < n; j++ {
		segs[j] = newSegment(start, length[j], speed[j], speed[j+1], segV[j], segA[j])
		start = segs[j].end()
	}
	return segs
}

// pathBounds converts joint limits into path speed and acceleration bounds
// along the unit direction d.
func pathBounds(d, vmax, amax []float64) (v, a float64) {
	v, a = math.Inf(1), math.Inf(1)
	for k, u := range d {
		u = math.Abs(u)
		if u < minSegmentLength {
			continue
		}
		v = math.Min(v, vmax[k]/u)
		a = math.Min(a, amax[k]/u)
	}
	if math.IsInf(v, 1) {
		v, a = floats.Min(vmax), floats.Min(amax)
	}
	return v, a
}

// cornerLimit bounds the speed through the vertex joining two pieces by the
// centripetal acceleration of a circular blend that deviates from the vertex
// by at most PathTolerance.
func (s *TOTG) cornerLimit(in, out []float64, lenIn, lenOut, acc float64) float64 {
	if lenIn <= minSegmentLength || lenOut <= minSegmentLength {
		return 0
	}
	cos := math.Max(-1, math.Min(1, floats.Dot(in, out)))
	angle := math.Acos(cos)
	if angle < 1e-9 {
		return math.Inf(1)
	}
	if s.PathTolerance <= 0 || angle > math.Pi-1e-9 {
		return 0
	}
	half := angle / 2
	blend := math.Min(math.Min(lenIn, lenOut)/2, s.PathTolerance*math.Sin(half)/(1-math.Cos(half)))
	radius := blend / math.Tan(half)
	return math.Sqrt(acc * radius)
}

type stamped struct {
	time float64
	seg  int
	kept int // index into points, or -1 for a resampled point
}

// emit builds the output moves: every kept vertex plus uniform samples.
func (s *TOTG) emit(pts []point, segs timeline) []instruction.Instruction {
	stamps := make([]stamped, 0, len(pts))
	for j := range pts {
		st := stamped{kept: j}
		switch {
		case len(segs) == 0:
		case j < len(segs):
			st.time, st.seg = segs[j].start, j
		default:
			st.time, st.seg = segs[len(segs)-1].end(), len(segs)-1
		}
		stamps = append(stamps, st)
	}

	if total := segs.duration(); s.ResampleDT > 0 && total > 0 {
		const eps = 1e-9
		seg := 0
		for k := 1; float64(k)*s.ResampleDT < total-eps; k++ {
			t := float64(k) * s.ResampleDT
			for seg < len(segs)-1 && t > segs[seg].end() {
				seg++
			}
			if nearKept(stamps, t, eps) {
				continue
			}
			stamps = append(stamps, stamped{time: t, seg: seg, kept: -1})
		}
		sort.SliceStable(stamps, func(a, b int) bool { return stamps[a].time < stamps[b].time })
	}

	out := make([]instruction.Instruction, 0, len(stamps))
	for _, st := range stamps {
		out = append(out, s.moveAt(pts, segs, st))
	}
	return out
}

func nearKept(stamps []stamped, t, eps float64) bool {
	for _, st := range stamps {
		if st.kept >= 0 && math.Abs(st.time-t) < eps {
			return true
		}
	}
	return false
}

func (s *TOTG) moveAt(pts []point, segs timeline, st stamped) instruction.Instruction {
	dim := len(pts[0].position)
	var template point
	if st.kept >= 0 {
		template = pts[st.kept]
	} else {
		template = pts[st.seg+1]
	}

	state := &instruction.StateWaypoint{
		JointNames:   slices.Clone(template.names),
		Position:     slices.Clone(template.position),
		Velocity:     make([]float64, dim),
		Acceleration: make([]float64, dim),
		Effort:       make([]float64, dim),
		Time:         st.time,
	}
	if len(segs) > 0 {
		seg := &segs[st.seg]
		pos, vel, acc := seg.sample(st.time)
		dir := direction(pts[st.seg].position, pts[st.seg+1].position, seg.length)
		if st.kept < 0 {
			floats.AddScaledTo(state.Position, pts[st.seg].position, pos, dir)
		}
		floats.ScaleTo(state.Velocity, vel, dir)
		floats.ScaleTo(state.Acceleration, acc, dir)
	}

	m := template.move.Clone().(*instruction.Move)
	if st.kept != 0 && m.IsStart() {
		m.Type = instruction.Freespace
	}
	if st.kept < 0 {
		m.Description = ""
	}
	m.SetWaypoint(state)
	return m
}

func direction(from, to []float64, length float64) []float64 {
	d := make([]float64, len(from))
	if length <= minSegmentLength {
		return d
	}
	floats.SubTo(d, to, from)
	floats.Scale(1/length, d)
	return d
}
