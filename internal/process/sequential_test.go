package process

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/taskflow"
)

func TestSequentialGeneratorRunsInOrder(t *testing.T) {
	log := &runLog{}
	gen := NewSequentialGenerator("pipeline",
		&fakeTask{name: "first", log: log},
		&fakeTask{name: "second", log: log},
	)
	in := NewInput(nil, segment("seg", 0, 1), nil, nil, nil)
	out := taskflow.NewOutcome()

	graph := gen.GenerateTaskflow(in, out)
	require.NoError(t, taskflow.NewExecutor(2).Run(context.Background(), graph))

	assert.Equal(t, []string{"first:seg", "second:seg"}, log.all())
	require.True(t, out.Settled())
	assert.NoError(t, out.Err())
	require.Len(t, in.TaskInfos(), 2)
	for _, info := range in.TaskInfos() {
		assert.Equal(t, ReturnSuccess, info.ReturnCode)
		assert.NotEmpty(t, info.UniqueID.String())
	}
}

func TestSequentialGeneratorShortCircuits(t *testing.T) {
	boom := errors.New("boom")
	log := &runLog{}
	gen := NewSequentialGenerator("pipeline",
		&fakeTask{name: "first", log: log, err: boom},
		&fakeTask{name: "second", log: log},
	)
	in := NewInput(nil, segment("seg", 0), nil, nil, nil)
	out := taskflow.NewOutcome()

	err := taskflow.NewExecutor(2).Run(context.Background(), gen.GenerateTaskflow(in, out))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first:seg"}, log.all())
	assert.ErrorIs(t, out.Err(), boom)
	assert.True(t, in.IsAborted())

	infos := in.TaskInfos()
	require.Len(t, infos, 1)
	assert.Equal(t, ReturnFailure, infos[0].ReturnCode)
	assert.Equal(t, "boom", infos[0].Message)
}

func TestSequentialGeneratorWithoutTasksResolves(t *testing.T) {
	out := taskflow.NewOutcome()
	graph := NewSequentialGenerator("empty").GenerateTaskflow(NewInput(nil, instruction.NewComposite(), nil, nil, nil), out)
	require.NoError(t, taskflow.NewExecutor(1).Run(context.Background(), graph))
	assert.True(t, out.Settled())
	assert.NoError(t, out.Err())
}
