package planning

import (
	"context"

	"github.com/google/uuid"
	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/process"
	"github.com/vk/planflow/internal/taskflow"
)

// Future tracks one running request.
type Future struct {
	ID uuid.UUID
	// Outcome settles when the pipeline resolves or the first task fails.
	Outcome *taskflow.Outcome
	Input   process.Input
	Results *instruction.Composite

	done chan struct{}
	err  error
}

// Ready reports whether every task of the run has finished.
func (f *Future) Ready() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the run has finished and returns the outcome's error.
// Results may still be written until Wait returns.
func (f *Future) Wait(ctx context.Context) error {
	select {
	case <-f.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := f.Outcome.Err(); err != nil {
		return err
	}
	return f.err
}

// Abort asks every task that has not started yet to stop.
func (f *Future) Abort() {
	f.Input.Abort()
}
