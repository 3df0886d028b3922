package process

import (
	"errors"
	"fmt"
)

var (
	// ErrInputShape is returned when the input does not have the structure a
	// task or generator requires.
	ErrInputShape = errors.New("invalid input shape")
	// ErrAborted is returned by tasks that observed the abort flag.
	ErrAborted = errors.New("process aborted")
	// ErrContract is returned when a caller breaks a documented precondition.
	ErrContract = errors.New("contract violation")
)

// TaskError carries the task that failed and the failure category.
type TaskError struct {
	Task string
	Kind error
	Err  error
}

func (e *TaskError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("task %s: %v", e.Task, e.Kind)
	}
	return fmt.Sprintf("task %s: %v: %v", e.Task, e.Kind, e.Err)
}

func (e *TaskError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewTaskError builds a TaskError. kind should be one of the package
// sentinels or a sentinel of the package that detected the problem.
func NewTaskError(task string, kind, err error) *TaskError {
	return &TaskError{Task: task, Kind: kind, Err: err}
}
