package testutil

import "time"

// ExecutionRecord holds the start and end times for a single task run.
type ExecutionRecord struct {
	Start time.Time
	End   time.Time
}
