package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/planflow/internal/env"
	"github.com/vk/planflow/internal/profile"
)

// Model is the unified, format-agnostic representation of the whole
// application configuration.
type Model struct {
	Manipulators map[string]*Manipulator
	Profiles     []*ProfileDefinition
	Remaps       []*Remap
	Pipelines    map[string]*Pipeline
	Rasters      map[string]*RasterPipeline
}

// NewModel returns an empty model with all maps allocated.
func NewModel() *Model {
	return &Model{
		Manipulators: make(map[string]*Manipulator),
		Pipelines:    make(map[string]*Pipeline),
		Rasters:      make(map[string]*RasterPipeline),
	}
}

// Manipulator is the format-agnostic representation of a `manipulator` block.
type Manipulator struct {
	Name   string
	Joints []*Joint
}

// Joint holds the limits of one joint, in joint order.
type Joint struct {
	Name            string
	MaxVelocity     float64
	MaxAcceleration float64
}

// Limits converts the joints into the environment's representation.
func (m *Manipulator) Limits() env.Limits {
	l := env.Limits{
		JointNames:   make([]string, len(m.Joints)),
		Velocity:     make([]float64, len(m.Joints)),
		Acceleration: make([]float64, len(m.Joints)),
	}
	for i, j := range m.Joints {
		l.JointNames[i], l.Velocity[i], l.Acceleration[i] = j.Name, j.MaxVelocity, j.MaxAcceleration
	}
	return l
}

// ProfileDefinition is a named profile for one task. Arguments are decoded
// by a Converter into the task's profile type.
type ProfileDefinition struct {
	Task      string
	Name      string
	Arguments map[string]hcl.Expression
}

// RemapKind selects which remapping table a Remap belongs to.
type RemapKind string

const (
	RemapPlan      RemapKind = "plan"
	RemapComposite RemapKind = "composite"
)

// ParseRemapKind validates a remap kind label.
func ParseRemapKind(s string) (RemapKind, error) {
	switch k := RemapKind(s); k {
	case RemapPlan, RemapComposite:
		return k, nil
	default:
		return "", fmt.Errorf("unknown remap kind %q, want %q or %q", s, RemapPlan, RemapComposite)
	}
}

// Remap rewrites requested profile names for one task.
type Remap struct {
	Kind  RemapKind
	Task  string
	Names map[string]string
}

// Remapping merges every remap of the given kind. Later entries win.
func (m *Model) Remapping(kind RemapKind) profile.Remapping {
	out := profile.Remapping{}
	for _, r := range m.Remaps {
		if r.Kind != kind {
			continue
		}
		for from, to := range r.Names {
			out.Set(r.Task, from, to)
		}
	}
	return out
}

// Pipeline runs the named tasks one after another.
type Pipeline struct {
	Name  string
	Tasks []string
}

// RasterPipeline combines three pipelines into a raster generator.
type RasterPipeline struct {
	Name       string
	Freespace  string
	Transition string
	Raster     string
}
