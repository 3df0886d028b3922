package totg

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/planflow/internal/env"
	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/process"
	"github.com/vk/planflow/internal/profile"
	"github.com/vk/planflow/internal/timeparam"
)

func testEnv(t *testing.T) *env.Static {
	t.Helper()
	e := env.NewStatic()
	require.NoError(t, e.AddManipulator("arm", env.Limits{
		JointNames:   joints,
		Velocity:     []float64{1},
		Acceleration: []float64{1},
	}))
	return e
}

func program(children ...instruction.Instruction) *instruction.Composite {
	c := instruction.NewComposite(children...)
	c.Manipulator.Manipulator = "arm"
	return c
}

func exact() *Profile {
	return &Profile{
		MaxVelocityScaling:     1,
		MaxAccelerationScaling: 1,
		PathTolerance:          0.01,
		MinAngleChange:         0.001,
		Unflatten:              true,
	}
}

func runTask(t *testing.T, g *Generator, results *instruction.Composite, opts ...func(*process.Input)) (process.Input, error) {
	t.Helper()
	in := process.NewInput(results.CloneComposite(), results, testEnv(t), profile.Remapping{}, profile.Remapping{})
	for _, opt := range opts {
		opt(&in)
	}
	return in, g.Run(context.Background(), in, uuid.New())
}

func TestGeneratorDefaults(t *testing.T) {
	g := New("")
	assert.Equal(t, DefaultName, g.Name())
	def, ok := g.Profiles().Get(instruction.DefaultProfile)
	require.True(t, ok)
	assert.Equal(t, DefaultProfile(), def)
	assert.Equal(t, "raster_totg", New("raster_totg").Name())
}

func TestGeneratorScenario(t *testing.T) {
	seg := segment("segment", jointMove(0), jointMove(1), jointMove(2))
	seg.SetProfileOverride(DefaultName, &Profile{
		MaxVelocityScaling:     2,
		MaxAccelerationScaling: 1,
		PathTolerance:          0.01,
		MinAngleChange:         0.001,
		Unflatten:              true,
	})
	results := program(seg)
	results.SetProfileOverride(DefaultName, exact())
	solver := &recordingSolver{}

	in, err := runTask(t, New("", WithSolver(solver.factory())), results)
	require.NoError(t, err)

	calls := solver.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, 1.0, calls[0].velScale, "per-segment runs solve at full speed")
	assert.Equal(t, 1.0, calls[0].accScale)

	require.Equal(t, 1, results.Len())
	got := states(t, results)
	require.Len(t, got, 3)
	// Solved at full speed the states sit at 0, 1.5 and 3; the segment factor halves that.
	assert.InDelta(t, 0.0, got[0].Time, 1e-9)
	assert.InDelta(t, 0.75, got[1].Time, 1e-9)
	assert.InDelta(t, 1.5, got[2].Time, 1e-9)
	assert.InDelta(t, 2.0, got[1].Velocity[0], 1e-9)

	infos := in.TaskInfos()
	require.Len(t, infos, 1)
	assert.Equal(t, process.ReturnSuccess, infos[0].ReturnCode)
	assert.Equal(t, DefaultName, infos[0].Name)
}

func TestGeneratorMonotonicTimes(t *testing.T) {
	results := program(
		segment("a", jointMove(0), jointMove(0.4), jointMove(1)),
		segment("b", jointMove(0.5), jointMove(-0.3)),
		segment("c", jointMove(0.2), jointMove(1.1)),
	)
	results.SetProfileOverride(DefaultName, &Profile{
		MaxVelocityScaling:     0.5,
		MaxAccelerationScaling: 0.5,
		PathTolerance:          0.01,
		ResampleDT:             0.05,
		MinAngleChange:         0.001,
		Unflatten:              true,
	})

	_, err := runTask(t, New(""), results)
	require.NoError(t, err)

	require.Equal(t, 3, results.Len())
	got := states(t, results)
	require.Greater(t, len(got), 7)
	assert.Equal(t, 0.0, got[0].Time)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i].Time, got[i-1].Time, "state %d", i)
	}
	for i := 0; i < results.Len(); i++ {
		child, _ := results.At(i)
		assert.NotEmpty(t, child.(*instruction.Composite).Children(), "segment %d", i)
	}
}

func TestGeneratorEmptyProgram(t *testing.T) {
	tests := []struct {
		name    string
		results *instruction.Composite
	}{
		{"no children", program()},
		{"empty segments", program(instruction.NewComposite(), instruction.NewComposite())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			solver := &recordingSolver{}
			in, err := runTask(t, New("", WithSolver(solver.factory())), tt.results)

			require.NoError(t, err)
			assert.Empty(t, solver.recorded())
			infos := in.TaskInfos()
			require.Len(t, infos, 1)
			assert.Equal(t, process.ReturnSuccess, infos[0].ReturnCode)
		})
	}
}

func TestGeneratorProfileResolution(t *testing.T) {
	slow := exact()
	slow.MaxVelocityScaling = 0.25
	slow.ResampleDT = 0.5
	fast := exact()
	fast.MaxVelocityScaling = 0.75

	tests := []struct {
		name      string
		profile   string
		remap     profile.Remapping
		override  instruction.Profile
		wantScale float64
		wantDT    float64
	}{
		{"default", instruction.DefaultProfile, nil, nil, 1, 0.1},
		{"registered", "SLOW", nil, nil, 0.25, 0.5},
		{"unknown falls back to default", "MISSING", nil, nil, 1, 0.1},
		{"remapped", "RASTER", profile.Remapping{DefaultName: {"RASTER": "SLOW"}}, nil, 0.25, 0.5},
		{"remap for another task", "RASTER", profile.Remapping{"OTHER": {"RASTER": "SLOW"}}, nil, 1, 0.1},
		{"override wins", "SLOW", nil, fast, 0.75, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			solver := &recordingSolver{}
			g := New("", WithSolver(solver.factory()))
			g.Profiles().Register("SLOW", slow)

			results := program(segment("s", jointMove(0), jointMove(1)))
			results.Profile = tt.profile
			results.SetProfileOverride(DefaultName, tt.override)

			_, err := runTask(t, g, results, func(in *process.Input) {
				*in = process.NewInput(in.Instruction(), in.Results(), in.Env(), nil, tt.remap)
			})
			require.NoError(t, err)

			calls := solver.recorded()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.wantScale, calls[0].velScale)
			assert.Equal(t, tt.wantDT, calls[0].params.ResampleDT)
		})
	}
}

func TestGeneratorSegmentProfiles(t *testing.T) {
	slow := exact()
	slow.MaxVelocityScaling = 0.5

	newResults := func() *instruction.Composite {
		a := segment("a", jointMove(0), jointMove(1))
		b := segment("b", jointMove(2), jointMove(3))
		b.Profile = "SEGMENT"
		results := program(a, b)
		results.SetProfileOverride(DefaultName, exact())
		return results
	}
	solve := func(t *testing.T, remap profile.Remapping) []*instruction.StateWaypoint {
		t.Helper()
		g := New("")
		g.Profiles().Register("SLOW", slow)
		results := newResults()
		_, err := runTask(t, g, results, func(in *process.Input) {
			*in = process.NewInput(in.Instruction(), in.Results(), in.Env(), remap, nil)
		})
		require.NoError(t, err)
		return states(t, results)
	}

	uniform := solve(t, nil)
	slowed := solve(t, profile.Remapping{DefaultName: {"SEGMENT": "SLOW"}})
	require.Len(t, uniform, 4)
	require.Len(t, slowed, 4)

	// The first segment keeps its timing, the second takes twice as long.
	assert.InDelta(t, uniform[1].Time, slowed[1].Time, 1e-9)
	wantEnd := uniform[1].Time + 2*(uniform[3].Time-uniform[1].Time)
	assert.InDelta(t, wantEnd, slowed[3].Time, 1e-9)
}

func TestGeneratorUnflattenDisabled(t *testing.T) {
	flat := exact()
	flat.Unflatten = false
	flat.MaxVelocityScaling = 0.5

	seg := segment("s", jointMove(0), jointMove(1), jointMove(2))
	seg.SetProfileOverride(DefaultName, exact())
	results := program(seg, segment("t", jointMove(3)))
	results.SetProfileOverride(DefaultName, flat)
	solver := &recordingSolver{}

	_, err := runTask(t, New("", WithSolver(solver.factory())), results)
	require.NoError(t, err)

	assert.Equal(t, 4, results.Len())
	for _, child := range results.Children() {
		assert.True(t, instruction.IsMove(child))
	}
	calls := solver.recorded()
	require.Len(t, calls, 1)
	assert.Equal(t, 0.5, calls[0].velScale, "composite scaling applies when segments are ignored")
	assert.Equal(t, 1.0, calls[0].accScale)
}

func TestGeneratorMixedProgramKeepsCompositeScaling(t *testing.T) {
	slow := exact()
	slow.MaxVelocityScaling = 0.1
	slow.MaxAccelerationScaling = 0.1

	solve := func(t *testing.T, withSegmentOverride bool) ([]*instruction.StateWaypoint, []solverCall) {
		t.Helper()
		seg := segment("s", jointMove(0), jointMove(1))
		if withSegmentOverride {
			seg.SetProfileOverride(DefaultName, exact())
		}
		results := program(seg, jointMove(2))
		results.SetProfileOverride(DefaultName, slow)
		solver := &recordingSolver{}

		_, err := runTask(t, New("", WithSolver(solver.factory())), results)
		require.NoError(t, err)
		return states(t, results), solver.recorded()
	}

	plain, plainCalls := solve(t, false)
	overridden, calls := solve(t, true)

	require.Len(t, calls, 1)
	assert.Equal(t, plainCalls, calls)
	assert.Equal(t, 0.1, calls[0].velScale)
	assert.Equal(t, 0.1, calls[0].accScale)
	require.NotEmpty(t, overridden)
	require.Len(t, overridden, len(plain))
	assert.InDelta(t, plain[len(plain)-1].Time, overridden[len(overridden)-1].Time, 1e-9)
}

func TestGeneratorFlatProgram(t *testing.T) {
	results := program(jointMove(0), jointMove(1))
	results.SetProfileOverride(DefaultName, exact())

	_, err := runTask(t, New(""), results)
	require.NoError(t, err)

	got := states(t, results)
	require.Len(t, got, 2)
	assert.Greater(t, got[1].Time, 0.0)
}

func TestGeneratorErrors(t *testing.T) {
	badOverride := segment("s", jointMove(0), jointMove(1))
	badOverride.SetProfileOverride(DefaultName, otherProfile{})

	badChild := segment("s", jointMove(0), jointMove(1))
	badChild.SetProfileOverride(DefaultName, &Profile{MaxVelocityScaling: 0, MaxAccelerationScaling: 1})

	invalid := program(segment("s", jointMove(0), jointMove(1)))
	invalid.SetProfileOverride(DefaultName, &Profile{MaxVelocityScaling: -1, MaxAccelerationScaling: 1})

	noManip := instruction.NewComposite(segment("s", jointMove(0)))
	unknownManip := program(segment("s", jointMove(0)))
	unknownManip.Manipulator.Manipulator = "gantry"

	tests := []struct {
		name    string
		results *instruction.Composite
		solver  error
		wantErr error
	}{
		{"override of wrong type", program(badOverride), nil, profile.ErrOverrideType},
		{"composite override of wrong type", func() *instruction.Composite {
			c := program(segment("s", jointMove(0)))
			c.SetProfileOverride(DefaultName, otherProfile{})
			return c
		}(), nil, profile.ErrOverrideType},
		{"nil segment override", func() *instruction.Composite {
			seg := segment("s", jointMove(0), jointMove(1))
			seg.SetProfileOverride(DefaultName, (*Profile)(nil))
			return program(seg)
		}(), nil, profile.ErrOverrideType},
		{"nil composite override", func() *instruction.Composite {
			c := program(segment("s", jointMove(0), jointMove(1)))
			c.SetProfileOverride(DefaultName, (*Profile)(nil))
			return c
		}(), nil, profile.ErrOverrideType},
		{"segment profile without speed", program(badChild), nil, process.ErrContract},
		{"invalid profile", invalid, nil, process.ErrContract},
		{"no manipulator", noManip, nil, env.ErrMissingKinematics},
		{"unknown manipulator", unknownManip, nil, env.ErrMissingKinematics},
		{"solver failure", program(segment("s", jointMove(0), jointMove(1))), timeparam.ErrInfeasible, timeparam.ErrInfeasible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			solver := &recordingSolver{err: tt.solver}
			before := tt.results.CloneComposite()

			in, err := runTask(t, New("", WithSolver(solver.factory())), tt.results)

			require.ErrorIs(t, err, tt.wantErr)
			assert.True(t, tt.results.Equal(before), "results must not change on failure")
			infos := in.TaskInfos()
			require.Len(t, infos, 1)
			assert.Equal(t, process.ReturnFailure, infos[0].ReturnCode)
			assert.NotEmpty(t, infos[0].Message)
		})
	}
}

func TestGeneratorSolverFailureNamesInput(t *testing.T) {
	solver := &recordingSolver{err: fmt.Errorf("%w: boom", timeparam.ErrInfeasible)}
	results := program(segment("s", jointMove(0), jointMove(1)))
	results.Description = "weld pass"

	in, err := runTask(t, New("", WithSolver(solver.factory())), results)
	require.Error(t, err)
	assert.Contains(t, in.TaskInfos()[0].Message, "weld pass")
}

func TestGeneratorRejectsNonComposite(t *testing.T) {
	move := jointMove(0)
	in := process.NewInput(move, move, testEnv(t), nil, nil)

	err := New("").Run(context.Background(), in, uuid.New())
	assert.ErrorIs(t, err, process.ErrInputShape)
	require.Len(t, in.TaskInfos(), 1)
}

func TestGeneratorAborted(t *testing.T) {
	solver := &recordingSolver{}
	results := program(segment("s", jointMove(0), jointMove(1)))
	in := process.NewInput(results, results, testEnv(t), nil, nil)
	in.Abort()

	err := New("", WithSolver(solver.factory())).Run(context.Background(), in, uuid.New())
	assert.ErrorIs(t, err, process.ErrAborted)
	assert.Empty(t, in.TaskInfos())
	assert.Empty(t, solver.recorded())
}

func TestProfileValidate(t *testing.T) {
	assert.NoError(t, DefaultProfile().Validate())
	err := (&Profile{MaxVelocityScaling: 0, MaxAccelerationScaling: -1, PathTolerance: -1, MinAngleChange: -1}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max velocity scaling")
	assert.Contains(t, err.Error(), "path tolerance")
}
