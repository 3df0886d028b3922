package totg

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vk/planflow/internal/ctxlog"
	"github.com/vk/planflow/internal/env"
	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/process"
	"github.com/vk/planflow/internal/profile"
	"github.com/vk/planflow/internal/timeparam"
)

// DefaultName is the task name used for profile lookups, remapping and
// override keys unless the generator is given another one.
const DefaultName = "TOTG"

// matchSlack is added to the path tolerance when matching segment ends.
const matchSlack = 1e-6

// Generator is the time-parameterization task. It times the whole results
// composite in one solver call and writes the timed trajectory back,
// segment by segment.
type Generator struct {
	name      string
	profiles  *profile.Registry[*Profile]
	newSolver timeparam.Factory
}

// Option configures a Generator.
type Option func(*Generator)

// WithSolver replaces the solver factory.
func WithSolver(f timeparam.Factory) Option {
	return func(g *Generator) { g.newSolver = f }
}

// WithProfiles replaces the profile registry.
func WithProfiles(r *profile.Registry[*Profile]) Option {
	return func(g *Generator) { g.profiles = r }
}

// New creates a generator. An empty name means DefaultName.
func New(name string, opts ...Option) *Generator {
	if name == "" {
		name = DefaultName
	}
	g := &Generator{
		name:      name,
		profiles:  profile.NewRegistry(DefaultProfile()),
		newSolver: timeparam.DefaultFactory,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) Name() string { return g.name }

// Profiles returns the registry owned by this generator.
func (g *Generator) Profiles() *profile.Registry[*Profile] { return g.profiles }

// Run times the results composite of input in place.
func (g *Generator) Run(ctx context.Context, input process.Input, id uuid.UUID) error {
	if input.IsAborted() {
		return process.ErrAborted
	}
	logger := ctxlog.FromContext(ctx).With("task", g.name, "input", input.Description())

	err := g.run(ctx, logger, input)
	if err != nil {
		logger.Error("Time parameterization failed.", "error", err)
	}
	return process.RecordResult(input, id, g.name, err)
}

func (g *Generator) run(ctx context.Context, logger *slog.Logger, input process.Input) error {
	ci, err := instruction.AsComposite(input.Results())
	if err != nil {
		return process.NewTaskError(g.name, process.ErrInputShape, err)
	}

	limits, err := g.jointLimits(input, ci)
	if err != nil {
		return process.NewTaskError(g.name, env.ErrMissingKinematics, err)
	}

	name := profile.ResolveName(ci.Profile, g.name, input.CompositeProfileRemapping())
	prof, err := profile.Resolve(ctx, name, g.profiles, DefaultProfile(), ci.ProfileOverride(g.name))
	if err != nil {
		return process.NewTaskError(g.name, process.ErrContract, err)
	}
	if err := prof.Validate(); err != nil {
		return process.NewTaskError(g.name, process.ErrContract, fmt.Errorf("profile %q: %w", name, err))
	}

	if len(instruction.FlattenMoves(ci)) == 0 {
		logger.Warn("No move instructions to time, skipping.")
		return nil
	}

	factors, perSegment, err := g.segmentFactors(ctx, input, ci, prof)
	if err != nil {
		return process.NewTaskError(g.name, process.ErrContract, err)
	}

	if perSegment && !prof.Unflatten {
		logger.Warn("Unflatten is disabled, per-segment profiles are ignored.")
		perSegment = false
	}
	if perSegment && !segmented(ci) {
		logger.Warn("Program mixes segments and moves, per-segment profiles are ignored.")
		perSegment = false
	}

	velScale, accScale := prof.MaxVelocityScaling, prof.MaxAccelerationScaling
	if perSegment {
		velScale, accScale = 1, 1
	}
	resampled := ci.CloneComposite()
	solver := g.newSolver(timeparam.Params{
		PathTolerance:  prof.PathTolerance,
		ResampleDT:     prof.ResampleDT,
		MinAngleChange: prof.MinAngleChange,
	})
	if err := solver.ComputeTimeStamps(ctx, resampled, limits.Velocity, limits.Acceleration, velScale, accScale); err != nil {
		return fmt.Errorf("task %s: failed to time %s: %w", g.name, input.Description(), err)
	}

	switch {
	case prof.Unflatten && segmented(ci):
		out, err := Unflatten(resampled, ci, prof.PathTolerance+matchSlack)
		if err != nil {
			return process.NewTaskError(g.name, process.ErrInputShape, err)
		}
		if perSegment {
			if err := RescaleTimings(out, factors); err != nil {
				return process.NewTaskError(g.name, process.ErrContract, err)
			}
		}
		ci.SetChildren(out.Children())
	case prof.Unflatten:
		logger.Debug("Program is not split into segments, keeping the flat trajectory.")
		ci.SetChildren(resampled.Children())
	default:
		ci.SetChildren(resampled.Children())
	}
	return nil
}

func (g *Generator) jointLimits(input process.Input, ci *instruction.Composite) (env.Limits, error) {
	if input.Env() == nil {
		return env.Limits{}, errors.New("input has no environment")
	}
	manip := ci.Manipulator.Manipulator
	if manip == "" {
		return env.Limits{}, errors.New("results composite names no manipulator")
	}
	return input.Env().JointLimits(manip)
}

// segmentFactors returns one velocity factor per child of ci, starting from
// the composite's own scaling. A child composite with its own override for
// this task, or whose remapped profile name is registered, contributes that
// profile's scaling and switches the run to per-segment timing.
func (g *Generator) segmentFactors(ctx context.Context, input process.Input, ci *instruction.Composite, prof *Profile) ([]float64, bool, error) {
	factors := make([]float64, ci.Len())
	perSegment := false
	for i, child := range ci.Children() {
		factors[i] = prof.MaxVelocityScaling
		seg, ok := child.(*instruction.Composite)
		if !ok {
			continue
		}
		name := profile.ResolveName(seg.Profile, g.name, input.PlanProfileRemapping())
		p, src, err := profile.Lookup(ctx, name, g.profiles, nil, seg.ProfileOverride(g.name))
		if err != nil {
			return nil, false, fmt.Errorf("segment %d: %w", i, err)
		}
		// An override or a named registry hit switches modes; falling back to
		// DEFAULT does not.
		switch {
		case src == profile.FromOverride:
		case src == profile.FromRegistry && name != instruction.DefaultProfile:
		default:
			continue
		}
		if !(p.MaxVelocityScaling > 0) {
			return nil, false, fmt.Errorf("segment %d: profile %q has velocity scaling %g", i, name, p.MaxVelocityScaling)
		}
		factors[i] = p.MaxVelocityScaling
		perSegment = true
	}
	return factors, perSegment, nil
}

func segmented(ci *instruction.Composite) bool {
	for _, child := range ci.Children() {
		if !instruction.IsComposite(child) {
			return false
		}
	}
	return true
}
