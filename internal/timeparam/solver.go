package timeparam

import (
	"context"
	"errors"

	"github.com/vk/planflow/internal/instruction"
)

// ErrInfeasible is returned when no timing can satisfy the limits.
var ErrInfeasible = errors.New("trajectory cannot be time parameterized")

// Solver time-parameterizes a trajectory in place. On success the
// trajectory holds a flat, time-ordered sequence of moves whose waypoints
// are states. On failure the trajectory is left untouched.
type Solver interface {
	ComputeTimeStamps(ctx context.Context, trajectory *instruction.Composite, velLimits, accLimits []float64, velScale, accScale float64) error
}

// Params configures a solver run.
type Params struct {
	PathTolerance  float64
	ResampleDT     float64
	MinAngleChange float64
}

// Factory builds a solver for one set of parameters.
type Factory func(Params) Solver

// DefaultFactory builds TOTG solvers.
func DefaultFactory(p Params) Solver {
	return NewTOTG(p)
}
