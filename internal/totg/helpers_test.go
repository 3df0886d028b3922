package totg

import (
	"context"
	"sync"
	"testing"

	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/timeparam"
)

var joints = []string{"j1"}

func jointMove(pos float64) *instruction.Move {
	return instruction.NewMove(instruction.NewJointWaypoint(joints, []float64{pos}), instruction.Freespace)
}

func stateMove(pos, vel, acc, t float64) *instruction.Move {
	st := instruction.NewStateWaypoint(joints, []float64{pos})
	st.Velocity[0], st.Acceleration[0], st.Effort[0], st.Time = vel, acc, acc, t
	return instruction.NewMove(st, instruction.Freespace)
}

func segment(desc string, moves ...*instruction.Move) *instruction.Composite {
	c := instruction.NewComposite()
	c.Description = desc
	for _, m := range moves {
		c.Append(m)
	}
	return c
}

func states(t testing.TB, c *instruction.Composite) []*instruction.StateWaypoint {
	t.Helper()
	var out []*instruction.StateWaypoint
	for _, m := range instruction.FlattenMoves(c) {
		if st, ok := m.Waypoint().(*instruction.StateWaypoint); ok {
			out = append(out, st)
		}
	}
	return out
}

type solverCall struct {
	params             timeparam.Params
	velScale, accScale float64
}

// recordingSolver records every call and delegates to the real solver unless
// err is set.
type recordingSolver struct {
	mu    sync.Mutex
	calls []solverCall
	err   error
}

func (r *recordingSolver) factory() timeparam.Factory {
	return func(p timeparam.Params) timeparam.Solver {
		return &recordingRun{parent: r, params: p}
	}
}

func (r *recordingSolver) recorded() []solverCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]solverCall(nil), r.calls...)
}

type recordingRun struct {
	parent *recordingSolver
	params timeparam.Params
}

func (r *recordingRun) ComputeTimeStamps(ctx context.Context, traj *instruction.Composite, vel, acc []float64, velScale, accScale float64) error {
	r.parent.mu.Lock()
	r.parent.calls = append(r.parent.calls, solverCall{params: r.params, velScale: velScale, accScale: accScale})
	err := r.parent.err
	r.parent.mu.Unlock()
	if err != nil {
		return err
	}
	return timeparam.NewTOTG(r.params).ComputeTimeStamps(ctx, traj, vel, acc, velScale, accScale)
}

// otherProfile belongs to some other task.
type otherProfile struct{}

func (otherProfile) ProfileType() string { return "other" }
