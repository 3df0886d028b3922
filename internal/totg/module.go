package totg

import (
	"fmt"

	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/profile"
	"github.com/vk/planflow/internal/registry"
)

// Module registers a TOTG task under DefaultName.
type Module struct {
	Options []Option
}

func (m *Module) Register(r *registry.Registry) {
	r.RegisterTask(New(DefaultName, m.Options...))
}

// NewProfile returns a copy of the default profile.
func (g *Generator) NewProfile() instruction.Profile { return DefaultProfile() }

// RegisterProfile validates p and stores it under name.
func (g *Generator) RegisterProfile(name string, p instruction.Profile) error {
	tp, ok := p.(*Profile)
	if !ok || tp == nil {
		return fmt.Errorf("%w: got %T, want %T", profile.ErrOverrideType, p, tp)
	}
	if err := tp.Validate(); err != nil {
		return err
	}
	g.profiles.Register(name, tp)
	return nil
}

func (g *Generator) ProfileNames() []string { return g.profiles.Names() }
