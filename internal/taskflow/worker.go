package taskflow

import (
	"context"
	"fmt"

	"github.com/vk/planflow/internal/ctxlog"
)

// worker is the processing loop of one pool goroutine.
func (e *Executor) worker(ctx context.Context, r *run, readyChan chan *runNode, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for rn := range readyChan {
		workerLogger := logger.With("workerID", workerID, "nodeID", rn.id())

		if ctx.Err() != nil {
			r.skip(ctx, rn, ctx.Err())
			continue
		}
		if !rn.state.CompareAndSwap(int32(Pending), int32(Running)) {
			continue
		}

		workerLogger.Debug("Worker picked up node for execution.")
		err := runTask(ctxlog.WithLogger(ctx, workerLogger), rn)

		if err != nil {
			workerLogger.Error("Node execution failed.", "error", err)
			rn.err = err
			rn.state.Store(int32(Failed))
			r.recordFailure(rn)
			cancel()
			r.skipDependents(ctx, rn)
			r.wg.Done()
			continue
		}

		workerLogger.Debug("Node execution succeeded.")
		rn.state.Store(int32(Done))

		for _, dependent := range rn.dependents {
			if dependent.depCount.Add(-1) == 0 {
				workerLogger.Debug("Unlocking dependent node.", "dependentID", dependent.id())
				readyChan <- dependent
			}
		}
		r.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// runTask calls the node body and turns a panic into an error.
func runTask(ctx context.Context, rn *runNode) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task '%s' panicked: %v", rn.id(), p)
		}
	}()
	return rn.n.fn(ctx)
}
