package process

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vk/planflow/internal/ctxlog"
	"github.com/vk/planflow/internal/instruction"
)

// CheckInputTask verifies that the results are a valid, non-empty composite
// before later stages touch them. When the composite names a manipulator and
// the input carries an environment, the manipulator must be known to it.
type CheckInputTask struct {
	name string
}

func NewCheckInputTask(name string) *CheckInputTask {
	if name == "" {
		name = "check_input"
	}
	return &CheckInputTask{name: name}
}

func (t *CheckInputTask) Name() string { return t.name }

func (t *CheckInputTask) Run(ctx context.Context, input Input, id uuid.UUID) error {
	if input.IsAborted() {
		return ErrAborted
	}
	logger := ctxlog.FromContext(ctx).With("task", t.name)

	err := t.check(input)
	if err != nil {
		logger.Error("Input check failed.", "input", input.Description(), "error", err)
	}
	return RecordResult(input, id, t.name, err)
}

func (t *CheckInputTask) check(input Input) error {
	ci, err := instruction.AsComposite(input.Results())
	if err != nil {
		return NewTaskError(t.name, ErrInputShape, err)
	}
	if ci.IsEmpty() {
		return NewTaskError(t.name, ErrInputShape, errors.New("results composite is empty"))
	}
	if err := ci.Validate(); err != nil {
		return NewTaskError(t.name, ErrInputShape, err)
	}
	if manip := ci.Manipulator.Manipulator; manip != "" && input.Env() != nil {
		if _, err := input.Env().JointLimits(manip); err != nil {
			return fmt.Errorf("task %s: %w", t.name, err)
		}
	}
	return nil
}
