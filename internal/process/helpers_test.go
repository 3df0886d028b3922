package process

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/taskflow"
)

// fakeTask records the order it ran in and optionally fails.
type fakeTask struct {
	name string
	err  error
	log  *runLog
}

func (t *fakeTask) Name() string { return t.name }

func (t *fakeTask) Run(_ context.Context, input Input, id uuid.UUID) error {
	if input.IsAborted() {
		return ErrAborted
	}
	t.log.add(t.name + ":" + input.Description())
	return RecordResult(input, id, t.name, t.err)
}

type runLog struct {
	mu      sync.Mutex
	entries []string
}

func (l *runLog) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, s)
}

func (l *runLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...)
}

func (l *runLog) index(s string) int {
	for i, e := range l.all() {
		if e == s {
			return i
		}
	}
	return -1
}

// countingGenerator wraps a generator and counts GenerateTaskflow calls.
type countingGenerator struct {
	Generator
	calls atomic.Int32
}

func (g *countingGenerator) GenerateTaskflow(input Input, out *taskflow.Outcome) *taskflow.Graph {
	g.calls.Add(1)
	return g.Generator.GenerateTaskflow(input, out)
}

func jointMove(pos float64) *instruction.Move {
	return instruction.NewMove(instruction.NewJointWaypoint([]string{"j1"}, []float64{pos}), instruction.Freespace)
}

func segment(desc string, positions ...float64) *instruction.Composite {
	c := instruction.NewComposite()
	c.Description = desc
	for _, p := range positions {
		c.Append(jointMove(p))
	}
	return c
}
