package planning

import (
	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/profile"
)

// Request asks a Server to run one planning pipeline.
type Request struct {
	// Name selects the generator that builds the task graph.
	Name         string
	Instructions *instruction.Composite
	// Seed, when not empty, is used as the starting results instead of a
	// copy of Instructions.
	Seed *instruction.Composite
	// EnvState is the joint state of the environment at request time, keyed
	// by joint name. It is neither serialized nor compared.
	EnvState map[string]float64
	// Commands are environment edits applied before planning. They are
	// neither serialized nor compared.
	Commands []string
	// Profile, when set, replaces the profile name of the results composite.
	Profile                   string
	PlanProfileRemapping      profile.Remapping
	CompositeProfileRemapping profile.Remapping
}

// Equal compares everything except EnvState and Commands.
func (r *Request) Equal(o *Request) bool {
	if r == nil || o == nil {
		return r == o
	}
	return r.Name == o.Name &&
		compositesEqual(r.Instructions, o.Instructions) &&
		compositesEqual(r.Seed, o.Seed) &&
		r.Profile == o.Profile &&
		r.PlanProfileRemapping.Equal(o.PlanProfileRemapping) &&
		r.CompositeProfileRemapping.Equal(o.CompositeProfileRemapping)
}

func compositesEqual(a, b *instruction.Composite) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}
