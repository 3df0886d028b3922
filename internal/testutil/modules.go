package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vk/planflow/internal/process"
	"github.com/vk/planflow/internal/registry"
)

// RecorderModule registers a task that records when it ran on each input,
// keyed by the input's description.
type RecorderModule struct {
	TaskName string
	Sleep    time.Duration

	mu      sync.Mutex
	records map[string]*ExecutionRecord
}

// NewRecorderModule creates a recorder whose task is registered as name.
func NewRecorderModule(name string, sleep time.Duration) *RecorderModule {
	return &RecorderModule{TaskName: name, Sleep: sleep, records: make(map[string]*ExecutionRecord)}
}

func (m *RecorderModule) Register(r *registry.Registry) {
	r.RegisterTask(&recorderTask{module: m})
}

// Records returns a copy of what has been recorded so far.
func (m *RecorderModule) Records() map[string]ExecutionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]ExecutionRecord, len(m.records))
	for k, v := range m.records {
		out[k] = *v
	}
	return out
}

type recorderTask struct {
	module *RecorderModule
}

func (t *recorderTask) Name() string { return t.module.TaskName }

func (t *recorderTask) Run(ctx context.Context, input process.Input, id uuid.UUID) error {
	if input.IsAborted() {
		return process.ErrAborted
	}
	start := time.Now()
	select {
	case <-time.After(t.module.Sleep):
	case <-ctx.Done():
		return process.RecordResult(input, id, t.Name(), ctx.Err())
	}
	t.module.mu.Lock()
	t.module.records[input.Description()] = &ExecutionRecord{Start: start, End: time.Now()}
	t.module.mu.Unlock()
	return process.RecordResult(input, id, t.Name(), nil)
}

// FailerModule registers a task that always fails with Err.
type FailerModule struct {
	TaskName string
	Err      error
}

func (m *FailerModule) Register(r *registry.Registry) {
	r.RegisterTask(&failerTask{name: m.TaskName, err: m.Err})
}

type failerTask struct {
	name string
	err  error
}

func (t *failerTask) Name() string { return t.name }

func (t *failerTask) Run(_ context.Context, input process.Input, id uuid.UUID) error {
	if input.IsAborted() {
		return process.ErrAborted
	}
	return process.RecordResult(input, id, t.name, t.err)
}
