package process

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/planflow/internal/ctxlog"
	"github.com/vk/planflow/internal/taskflow"
)

// Generator builds the task graph that processes one input. out is settled
// exactly once: resolved by the graph's final node, or rejected by the
// first node that fails. Generators hold no per-call state.
type Generator interface {
	Name() string
	GenerateTaskflow(input Input, out *taskflow.Outcome) *taskflow.Graph
}

// SequentialGenerator runs its tasks one after another.
type SequentialGenerator struct {
	name  string
	tasks []Task
}

func NewSequentialGenerator(name string, tasks ...Task) *SequentialGenerator {
	return &SequentialGenerator{name: name, tasks: tasks}
}

func (g *SequentialGenerator) Name() string  { return g.name }
func (g *SequentialGenerator) Tasks() []Task { return g.tasks }

func (g *SequentialGenerator) GenerateTaskflow(input Input, out *taskflow.Outcome) *taskflow.Graph {
	graph := taskflow.New(g.name)
	var prev *taskflow.Task
	for _, t := range g.tasks {
		node := graph.AddNamedTask(t.Name(), taskNode(t, input, out))
		if prev != nil {
			mustPrecede(graph, *prev, node)
		}
		prev = &node
	}
	done := graph.AddNamedTask("done", func(ctx context.Context) error {
		ctxlog.FromContext(ctx).Debug("Generator finished.", "generator", g.name)
		out.Resolve()
		return nil
	})
	if prev != nil {
		mustPrecede(graph, *prev, done)
	}
	return graph
}

// taskNode wraps a leaf task as a graph node body. A failing task aborts the
// whole request and rejects the generator's outcome.
func taskNode(t Task, input Input, out *taskflow.Outcome) taskflow.TaskFunc {
	return func(ctx context.Context) error {
		logger := ctxlog.FromContext(ctx).With("task", t.Name())
		id := uuid.New()
		logger.Debug("Running task.", "taskID", id)
		if err := t.Run(ctx, input, id); err != nil {
			logger.Warn("Task failed.", "taskID", id, "input", input.Description(), "error", err)
			input.Abort()
			out.Reject(err)
			return err
		}
		return nil
	}
}

// mustPrecede wires edges between nodes the generator created itself, where
// an error can only mean a bug in the generator.
func mustPrecede(g *taskflow.Graph, from taskflow.Ref, to ...taskflow.Ref) {
	if err := g.Precede(from, to...); err != nil {
		panic(fmt.Sprintf("graph %s: %v", g.Name(), err))
	}
}
