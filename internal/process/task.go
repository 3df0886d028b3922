package process

import (
	"context"

	"github.com/google/uuid"
)

// Task is a leaf unit of work. Run returns nil on success. Every run that
// gets past the abort check records exactly one Info on the input.
type Task interface {
	Name() string
	Run(ctx context.Context, input Input, id uuid.UUID) error
}

// RecordResult stores the Info for one task run and returns err unchanged.
func RecordResult(input Input, id uuid.UUID, name string, err error) error {
	info := Info{UniqueID: id, Name: name, ReturnCode: ReturnSuccess}
	if err != nil {
		info.ReturnCode = ReturnFailure
		info.Message = err.Error()
	}
	input.AddTaskInfo(info)
	return err
}
