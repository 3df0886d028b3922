package planning

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/profile"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// ErrDecode is returned for YAML documents that do not describe a valid
// request or program.
var ErrDecode = errors.New("invalid planning document")

type requestDoc struct {
	Name                      string            `yaml:"name"`
	Instructions              *instructionDoc   `yaml:"instructions"`
	Seed                      *instructionDoc   `yaml:"seed,omitempty"`
	Profile                   string            `yaml:"profile,omitempty"`
	PlanProfileRemapping      profile.Remapping `yaml:"plan_profile_remapping,omitempty"`
	CompositeProfileRemapping profile.Remapping `yaml:"composite_profile_remapping,omitempty"`
}

type instructionDoc struct {
	Kind        string            `yaml:"kind"`
	Type        string            `yaml:"type,omitempty"`
	Order       string            `yaml:"order,omitempty"`
	Profile     string            `yaml:"profile,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Manipulator *manipulatorDoc   `yaml:"manipulator,omitempty"`
	Waypoint    *waypointDoc      `yaml:"waypoint,omitempty"`
	Children    []*instructionDoc `yaml:"children,omitempty"`
}

type manipulatorDoc struct {
	Name         string `yaml:"name"`
	WorkingFrame string `yaml:"working_frame,omitempty"`
	TCPFrame     string `yaml:"tcp_frame,omitempty"`
}

type waypointDoc struct {
	Kind         string    `yaml:"kind"`
	Names        []string  `yaml:"names,omitempty,flow"`
	Position     []float64 `yaml:"position,omitempty,flow"`
	Orientation  []float64 `yaml:"orientation,omitempty,flow"`
	Velocity     []float64 `yaml:"velocity,omitempty,flow"`
	Acceleration []float64 `yaml:"acceleration,omitempty,flow"`
	Effort       []float64 `yaml:"effort,omitempty,flow"`
	Time         float64   `yaml:"time,omitempty"`
}

// MarshalYAML encodes the serialized fields of the request.
func (r Request) MarshalYAML() (any, error) {
	doc := requestDoc{
		Name:                      r.Name,
		Profile:                   r.Profile,
		PlanProfileRemapping:      r.PlanProfileRemapping,
		CompositeProfileRemapping: r.CompositeProfileRemapping,
	}
	if r.Instructions != nil {
		doc.Instructions = encodeInstruction(r.Instructions)
	}
	if r.Seed != nil {
		doc.Seed = encodeInstruction(r.Seed)
	}
	return doc, nil
}

// UnmarshalYAML decodes a request document. EnvState and Commands are left
// empty.
func (r *Request) UnmarshalYAML(node *yaml.Node) error {
	var doc requestDoc
	if err := node.Decode(&doc); err != nil {
		return err
	}
	out := Request{
		Name:                      doc.Name,
		Profile:                   doc.Profile,
		PlanProfileRemapping:      doc.PlanProfileRemapping,
		CompositeProfileRemapping: doc.CompositeProfileRemapping,
	}
	var err error
	if doc.Instructions != nil {
		if out.Instructions, err = decodeComposite(doc.Instructions, "instructions"); err != nil {
			return err
		}
	}
	if doc.Seed != nil {
		if out.Seed, err = decodeComposite(doc.Seed, "seed"); err != nil {
			return err
		}
	}
	*r = out
	return nil
}

// LoadRequest reads a request from a YAML file.
func LoadRequest(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request %s: %w", path, err)
	}
	var req Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse request %s: %w", path, err)
	}
	if req.Instructions == nil {
		return nil, fmt.Errorf("%w: request %s has no instructions", ErrDecode, path)
	}
	return &req, nil
}

// WriteProgram encodes a program as YAML.
func WriteProgram(w io.Writer, c *instruction.Composite) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(encodeInstruction(c)); err != nil {
		return fmt.Errorf("encode program: %w", err)
	}
	return enc.Close()
}

// ReadProgram decodes a program written by WriteProgram.
func ReadProgram(r io.Reader) (*instruction.Composite, error) {
	var doc instructionDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	return decodeComposite(&doc, "program")
}

func encodeInstruction(i instruction.Instruction) *instructionDoc {
	h := i.Meta()
	doc := &instructionDoc{Kind: i.Kind().String(), Description: h.Description}
	if h.Profile != instruction.DefaultProfile {
		doc.Profile = h.Profile
	}
	if !h.Manipulator.IsEmpty() || h.Manipulator.WorkingFrame != "" || h.Manipulator.TCPFrame != "" {
		doc.Manipulator = &manipulatorDoc{
			Name:         h.Manipulator.Manipulator,
			WorkingFrame: h.Manipulator.WorkingFrame,
			TCPFrame:     h.Manipulator.TCPFrame,
		}
	}
	switch v := i.(type) {
	case *instruction.Move:
		doc.Type = v.Type.String()
		doc.Waypoint = encodeWaypoint(v.Waypoint())
	case *instruction.Plan:
		doc.Type = v.Type.String()
		doc.Waypoint = encodeWaypoint(v.Waypoint())
	case *instruction.Composite:
		if v.Order != instruction.Ordered {
			doc.Order = v.Order.String()
		}
		for _, child := range v.Children() {
			doc.Children = append(doc.Children, encodeInstruction(child))
		}
	}
	return doc
}

func encodeWaypoint(w instruction.Waypoint) *waypointDoc {
	doc := &waypointDoc{Kind: w.Kind().String()}
	switch v := w.(type) {
	case *instruction.JointWaypoint:
		doc.Names, doc.Position = v.Names, v.Position
	case *instruction.CartesianWaypoint:
		doc.Position = []float64{v.Position.X, v.Position.Y, v.Position.Z}
		o := v.Orientation
		doc.Orientation = []float64{o.Real, o.Imag, o.Jmag, o.Kmag}
	case *instruction.StateWaypoint:
		doc.Names, doc.Position = v.JointNames, v.Position
		doc.Velocity, doc.Acceleration, doc.Effort = v.Velocity, v.Acceleration, v.Effort
		doc.Time = v.Time
	}
	return doc
}

func decodeComposite(doc *instructionDoc, path string) (*instruction.Composite, error) {
	i, err := decodeInstruction(doc, path)
	if err != nil {
		return nil, err
	}
	c, err := instruction.AsComposite(i)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return c, nil
}

func decodeInstruction(doc *instructionDoc, path string) (instruction.Instruction, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: %s: empty instruction", ErrDecode, path)
	}
	var out instruction.Instruction
	switch doc.Kind {
	case "move", "plan":
		t := instruction.Freespace
		if doc.Type != "" {
			var err error
			if t, err = instruction.ParseMoveType(doc.Type); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
			}
		}
		wp, err := decodeWaypoint(doc.Waypoint)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
		}
		if doc.Kind == "move" {
			out = instruction.NewMove(wp, t)
		} else {
			out = instruction.NewPlan(wp, t)
		}
	case "composite":
		c := instruction.NewComposite()
		if doc.Order != "" {
			order, err := instruction.ParseCompositeOrder(doc.Order)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
			}
			c.Order = order
		}
		for i, child := range doc.Children {
			ci, err := decodeInstruction(child, fmt.Sprintf("%s[%d]", path, i))
			if err != nil {
				return nil, err
			}
			c.Append(ci)
		}
		out = c
	default:
		return nil, fmt.Errorf("%w: %s: unknown instruction kind %q", ErrDecode, path, doc.Kind)
	}

	h := out.Meta()
	if doc.Profile != "" {
		h.Profile = doc.Profile
	}
	h.Description = doc.Description
	if m := doc.Manipulator; m != nil {
		h.Manipulator = instruction.ManipulatorInfo{Manipulator: m.Name, WorkingFrame: m.WorkingFrame, TCPFrame: m.TCPFrame}
	}
	return out, nil
}

func decodeWaypoint(doc *waypointDoc) (instruction.Waypoint, error) {
	if doc == nil {
		return instruction.NullWaypoint{}, nil
	}
	switch doc.Kind {
	case "null", "":
		return instruction.NullWaypoint{}, nil
	case "joint":
		if len(doc.Names) != len(doc.Position) {
			return nil, fmt.Errorf("joint waypoint has %d names and %d positions", len(doc.Names), len(doc.Position))
		}
		return instruction.NewJointWaypoint(doc.Names, doc.Position), nil
	case "cartesian":
		if len(doc.Position) != 3 {
			return nil, fmt.Errorf("cartesian position needs 3 values, got %d", len(doc.Position))
		}
		w := &instruction.CartesianWaypoint{
			Position:    r3.Vec{X: doc.Position[0], Y: doc.Position[1], Z: doc.Position[2]},
			Orientation: quat.Number{Real: 1},
		}
		switch len(doc.Orientation) {
		case 0:
		case 4:
			w.Orientation = quat.Number{Real: doc.Orientation[0], Imag: doc.Orientation[1], Jmag: doc.Orientation[2], Kmag: doc.Orientation[3]}
		default:
			return nil, fmt.Errorf("cartesian orientation needs 4 values (w, x, y, z), got %d", len(doc.Orientation))
		}
		return w, nil
	case "state":
		n := len(doc.Position)
		if len(doc.Names) != n {
			return nil, fmt.Errorf("state waypoint has %d names and %d positions", len(doc.Names), n)
		}
		st := instruction.NewStateWaypoint(doc.Names, doc.Position)
		for _, f := range []struct {
			name string
			src  []float64
			dst  []float64
		}{
			{"velocity", doc.Velocity, st.Velocity},
			{"acceleration", doc.Acceleration, st.Acceleration},
			{"effort", doc.Effort, st.Effort},
		} {
			if len(f.src) == 0 {
				continue
			}
			if len(f.src) != n {
				return nil, fmt.Errorf("state %s has %d values, want %d", f.name, len(f.src), n)
			}
			copy(f.dst, f.src)
		}
		st.Time = doc.Time
		return st, nil
	default:
		return nil, fmt.Errorf("unknown waypoint kind %q", doc.Kind)
	}
}
