package instruction

import (
	"fmt"
	"maps"
	"reflect"
)

// DefaultProfile is the profile name every instruction starts with and the
// key every profile registry is seeded with.
const DefaultProfile = "DEFAULT"

// Kind tags the concrete variant behind an Instruction.
type Kind int

const (
	MoveKind Kind = iota
	PlanKind
	CompositeKind
)

func (k Kind) String() string {
	switch k {
	case MoveKind:
		return "move"
	case PlanKind:
		return "plan"
	case CompositeKind:
		return "composite"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Profile is a task configuration object that can be attached to an
// instruction as an override. Values are shared between the instruction and
// the tasks reading them and must be treated as immutable.
type Profile interface {
	ProfileType() string
}

// ProfileOverrides maps a task name to the profile that task should use for
// one instruction instead of its named registry lookup.
type ProfileOverrides map[string]Profile

// ManipulatorInfo identifies the kinematic group an instruction applies to.
type ManipulatorInfo struct {
	Manipulator  string
	WorkingFrame string
	TCPFrame     string
}

// IsEmpty reports whether no manipulator is set.
func (m ManipulatorInfo) IsEmpty() bool {
	return m.Manipulator == ""
}

// Header holds the fields shared by every instruction variant.
type Header struct {
	Profile     string
	Description string
	Manipulator ManipulatorInfo
	overrides   ProfileOverrides
}

func newHeader() Header {
	return Header{Profile: DefaultProfile}
}

// ProfileOverride returns the override registered for task, or nil.
func (h *Header) ProfileOverride(task string) Profile {
	return h.overrides[task]
}

// SetProfileOverride adds or replaces the override for task.
func (h *Header) SetProfileOverride(task string, p Profile) {
	if p == nil {
		h.RemoveProfileOverride(task)
		return
	}
	if h.overrides == nil {
		h.overrides = make(ProfileOverrides)
	}
	h.overrides[task] = p
}

// RemoveProfileOverride deletes the override for task, if any.
func (h *Header) RemoveProfileOverride(task string) {
	delete(h.overrides, task)
}

// ProfileOverrides returns a copy of the override map.
func (h *Header) ProfileOverrides() ProfileOverrides {
	return maps.Clone(h.overrides)
}

// SetProfileOverrides replaces all overrides with a copy of o.
func (h *Header) SetProfileOverrides(o ProfileOverrides) {
	h.overrides = maps.Clone(o)
}

func (h *Header) clone() Header {
	c := *h
	c.overrides = maps.Clone(h.overrides)
	return c
}

func (h *Header) equal(o *Header) bool {
	if h.Profile != o.Profile || h.Description != o.Description || h.Manipulator != o.Manipulator {
		return false
	}
	if len(h.overrides) != len(o.overrides) {
		return false
	}
	for task, p := range h.overrides {
		q, ok := o.overrides[task]
		if !ok || !reflect.DeepEqual(p, q) {
			return false
		}
	}
	return true
}

// Instruction is a node of a robot program. The set of implementations is
// closed to *Move, *Plan and *Composite.
type Instruction interface {
	Kind() Kind
	Meta() *Header
	Clone() Instruction
	Equal(other Instruction) bool
	isInstruction()
}

// MoveType is the motion kind of a move or plan instruction.
type MoveType int

const (
	Linear MoveType = iota
	Freespace
	Circular
	// Start marks the fixed initial state of a sub-program.
	Start
)

func (t MoveType) String() string {
	switch t {
	case Linear:
		return "linear"
	case Freespace:
		return "freespace"
	case Circular:
		return "circular"
	case Start:
		return "start"
	default:
		return fmt.Sprintf("MoveType(%d)", int(t))
	}
}

// ParseMoveType is the inverse of MoveType.String.
func ParseMoveType(s string) (MoveType, error) {
	for _, t := range []MoveType{Linear, Freespace, Circular, Start} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown move type %q", s)
}

// Move is a planned program step bound to one waypoint.
type Move struct {
	Header
	Type     MoveType
	waypoint Waypoint
}

// NewMove creates a move with the default profile.
func NewMove(wp Waypoint, t MoveType) *Move {
	return &Move{Header: newHeader(), Type: t, waypoint: normalizeWaypoint(wp)}
}

func (*Move) Kind() Kind      { return MoveKind }
func (m *Move) Meta() *Header { return &m.Header }
func (*Move) isInstruction()  {}
func (m *Move) IsStart() bool { return m.Type == Start }
func (m *Move) Waypoint() Waypoint {
	return normalizeWaypoint(m.waypoint)
}

// SetWaypoint replaces the waypoint. A nil waypoint is stored as NullWaypoint.
func (m *Move) SetWaypoint(wp Waypoint) {
	m.waypoint = normalizeWaypoint(wp)
}

func (m *Move) Clone() Instruction {
	return &Move{Header: m.Header.clone(), Type: m.Type, waypoint: m.Waypoint().Clone()}
}

func (m *Move) Equal(other Instruction) bool {
	o, ok := other.(*Move)
	if !ok {
		return false
	}
	return m.Type == o.Type && m.Header.equal(&o.Header) && m.Waypoint().Equal(o.Waypoint())
}

// Plan is an unplanned or seed program step bound to one waypoint.
type Plan struct {
	Header
	Type     MoveType
	waypoint Waypoint
}

// NewPlan creates a plan with the default profile.
func NewPlan(wp Waypoint, t MoveType) *Plan {
	return &Plan{Header: newHeader(), Type: t, waypoint: normalizeWaypoint(wp)}
}

func (*Plan) Kind() Kind      { return PlanKind }
func (p *Plan) Meta() *Header { return &p.Header }
func (*Plan) isInstruction()  {}
func (p *Plan) IsStart() bool { return p.Type == Start }
func (p *Plan) Waypoint() Waypoint {
	return normalizeWaypoint(p.waypoint)
}

// SetWaypoint replaces the waypoint. A nil waypoint is stored as NullWaypoint.
func (p *Plan) SetWaypoint(wp Waypoint) {
	p.waypoint = normalizeWaypoint(wp)
}

func (p *Plan) Clone() Instruction {
	return &Plan{Header: p.Header.clone(), Type: p.Type, waypoint: p.Waypoint().Clone()}
}

func (p *Plan) Equal(other Instruction) bool {
	o, ok := other.(*Plan)
	if !ok {
		return false
	}
	return p.Type == o.Type && p.Header.equal(&o.Header) && p.Waypoint().Equal(o.Waypoint())
}

// AsMove returns i as a *Move.
func AsMove(i Instruction) (*Move, error) {
	m, ok := i.(*Move)
	if !ok {
		return nil, wrongVariant("move instruction", i)
	}
	return m, nil
}

// AsPlan returns i as a *Plan.
func AsPlan(i Instruction) (*Plan, error) {
	p, ok := i.(*Plan)
	if !ok {
		return nil, wrongVariant("plan instruction", i)
	}
	return p, nil
}

// AsComposite returns i as a *Composite.
func AsComposite(i Instruction) (*Composite, error) {
	c, ok := i.(*Composite)
	if !ok {
		return nil, wrongVariant("composite instruction", i)
	}
	return c, nil
}

func IsMove(i Instruction) bool      { return i != nil && i.Kind() == MoveKind }
func IsPlan(i Instruction) bool      { return i != nil && i.Kind() == PlanKind }
func IsComposite(i Instruction) bool { return i != nil && i.Kind() == CompositeKind }
