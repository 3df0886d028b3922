package instruction

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// WaypointKind tags the concrete variant behind a Waypoint.
type WaypointKind int

const (
	NullKind WaypointKind = iota
	JointKind
	CartesianKind
	StateKind
)

func (k WaypointKind) String() string {
	switch k {
	case NullKind:
		return "null"
	case JointKind:
		return "joint"
	case CartesianKind:
		return "cartesian"
	case StateKind:
		return "state"
	default:
		return fmt.Sprintf("WaypointKind(%d)", int(k))
	}
}

// Waypoint is a motion target. The set of implementations is closed; callers
// switch on the concrete type or on Kind.
type Waypoint interface {
	Kind() WaypointKind
	Clone() Waypoint
	Equal(other Waypoint) bool
	isWaypoint()
}

// NullWaypoint carries no motion target.
type NullWaypoint struct{}

func (NullWaypoint) Kind() WaypointKind { return NullKind }
func (NullWaypoint) Clone() Waypoint    { return NullWaypoint{} }
func (NullWaypoint) isWaypoint()        {}

func (NullWaypoint) Equal(other Waypoint) bool {
	_, ok := other.(NullWaypoint)
	return ok
}

// JointWaypoint is a target expressed in joint space.
type JointWaypoint struct {
	Names    []string
	Position []float64
}

// NewJointWaypoint copies names and position into a new waypoint.
func NewJointWaypoint(names []string, position []float64) *JointWaypoint {
	return &JointWaypoint{Names: slices.Clone(names), Position: slices.Clone(position)}
}

func (*JointWaypoint) Kind() WaypointKind { return JointKind }
func (*JointWaypoint) isWaypoint()        {}

func (w *JointWaypoint) Clone() Waypoint {
	return NewJointWaypoint(w.Names, w.Position)
}

func (w *JointWaypoint) Equal(other Waypoint) bool {
	o, ok := other.(*JointWaypoint)
	if !ok {
		return false
	}
	return slices.Equal(w.Names, o.Names) && slices.Equal(w.Position, o.Position)
}

// CartesianWaypoint is a target pose of the tool frame.
type CartesianWaypoint struct {
	Position    r3.Vec
	Orientation quat.Number
}

func (*CartesianWaypoint) Kind() WaypointKind { return CartesianKind }
func (*CartesianWaypoint) isWaypoint()        {}

func (w *CartesianWaypoint) Clone() Waypoint {
	c := *w
	return &c
}

func (w *CartesianWaypoint) Equal(other Waypoint) bool {
	o, ok := other.(*CartesianWaypoint)
	if !ok {
		return false
	}
	return w.Position == o.Position && w.Orientation == o.Orientation
}

// StateWaypoint is a fully resolved joint state. It is the only variant that
// carries a time from the start of the trajectory.
type StateWaypoint struct {
	JointNames   []string
	Position     []float64
	Velocity     []float64
	Acceleration []float64
	Effort       []float64
	Time         float64
}

// NewStateWaypoint creates a state at rest at the given position.
func NewStateWaypoint(names []string, position []float64) *StateWaypoint {
	n := len(position)
	return &StateWaypoint{
		JointNames:   slices.Clone(names),
		Position:     slices.Clone(position),
		Velocity:     make([]float64, n),
		Acceleration: make([]float64, n),
		Effort:       make([]float64, n),
	}
}

func (*StateWaypoint) Kind() WaypointKind { return StateKind }
func (*StateWaypoint) isWaypoint()        {}

func (w *StateWaypoint) Clone() Waypoint {
	return &StateWaypoint{
		JointNames:   slices.Clone(w.JointNames),
		Position:     slices.Clone(w.Position),
		Velocity:     slices.Clone(w.Velocity),
		Acceleration: slices.Clone(w.Acceleration),
		Effort:       slices.Clone(w.Effort),
		Time:         w.Time,
	}
}

func (w *StateWaypoint) Equal(other Waypoint) bool {
	o, ok := other.(*StateWaypoint)
	if !ok {
		return false
	}
	return slices.Equal(w.JointNames, o.JointNames) &&
		slices.Equal(w.Position, o.Position) &&
		slices.Equal(w.Velocity, o.Velocity) &&
		slices.Equal(w.Acceleration, o.Acceleration) &&
		slices.Equal(w.Effort, o.Effort) &&
		w.Time == o.Time
}

func IsNullWaypoint(w Waypoint) bool      { return w != nil && w.Kind() == NullKind }
func IsJointWaypoint(w Waypoint) bool     { return w != nil && w.Kind() == JointKind }
func IsCartesianWaypoint(w Waypoint) bool { return w != nil && w.Kind() == CartesianKind }
func IsStateWaypoint(w Waypoint) bool     { return w != nil && w.Kind() == StateKind }

// AsState returns w as a *StateWaypoint.
func AsState(w Waypoint) (*StateWaypoint, error) {
	s, ok := w.(*StateWaypoint)
	if !ok {
		return nil, wrongVariant("state waypoint", w)
	}
	return s, nil
}

// JointPosition returns the joint position held by a joint or state waypoint.
// The returned slice aliases the waypoint.
func JointPosition(w Waypoint) ([]float64, error) {
	switch wp := w.(type) {
	case *JointWaypoint:
		return wp.Position, nil
	case *StateWaypoint:
		return wp.Position, nil
	default:
		return nil, wrongVariant("joint or state waypoint", w)
	}
}

// JointNames returns the joint names held by a joint or state waypoint.
func JointNames(w Waypoint) ([]string, error) {
	switch wp := w.(type) {
	case *JointWaypoint:
		return wp.Names, nil
	case *StateWaypoint:
		return wp.JointNames, nil
	default:
		return nil, wrongVariant("joint or state waypoint", w)
	}
}

func normalizeWaypoint(w Waypoint) Waypoint {
	if w == nil {
		return NullWaypoint{}
	}
	return w
}
