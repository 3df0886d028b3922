package taskflow

import (
	"context"
	"errors"
	"sync"
)

// ErrRejected is used when an outcome is rejected without a cause.
var ErrRejected = errors.New("rejected")

// Outcome is a single-fire completion promise. The first call to Resolve or
// Reject settles it; later calls are ignored and report false.
type Outcome struct {
	once   sync.Once
	done   chan struct{}
	err    error
	parent *Outcome
}

func NewOutcome() *Outcome {
	return &Outcome{done: make(chan struct{})}
}

// Child returns an outcome whose rejection also rejects o. Resolving the
// child does not settle o.
func (o *Outcome) Child() *Outcome {
	c := NewOutcome()
	c.parent = o
	return c
}

func (o *Outcome) Resolve() bool {
	return o.settle(nil)
}

func (o *Outcome) Reject(err error) bool {
	if err == nil {
		err = ErrRejected
	}
	settled := o.settle(err)
	if settled && o.parent != nil {
		o.parent.Reject(err)
	}
	return settled
}

func (o *Outcome) settle(err error) bool {
	settled := false
	o.once.Do(func() {
		o.err = err
		settled = true
		close(o.done)
	})
	return settled
}

// Done is closed once the outcome is settled.
func (o *Outcome) Done() <-chan struct{} { return o.done }

// Settled reports whether Resolve or Reject has been called.
func (o *Outcome) Settled() bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}

// Err returns the rejection error, or nil while pending or after Resolve.
func (o *Outcome) Err() error {
	select {
	case <-o.done:
		return o.err
	default:
		return nil
	}
}

// Wait blocks until the outcome settles or ctx is done.
func (o *Outcome) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
