package taskflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vk/planflow/internal/ctxlog"
)

// ErrSkipped marks nodes that never ran because an upstream node failed or
// the run was cancelled.
var ErrSkipped = errors.New("skipped")

// State is the lifecycle state of a node within one run.
type State int32

const (
	Pending State = iota
	Running
	Done
	Failed
	Skipped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Executor runs graphs on a fixed pool of workers.
type Executor struct {
	numWorkers int
}

// NewExecutor creates an executor. workers below one are raised to one.
func NewExecutor(workers int) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{numWorkers: workers}
}

func (e *Executor) Workers() int { return e.numWorkers }

// runNode is the per-run state of one graph node.
type runNode struct {
	n          *node
	depCount   atomic.Int32
	state      atomic.Int32
	err        error
	dependents []*runNode
}

func (rn *runNode) id() string { return rn.n.key() }

// run holds everything shared by the workers of one Run call.
type run struct {
	nodes []*runNode
	wg    sync.WaitGroup

	mu     sync.Mutex
	failed []*runNode
}

// Report summarizes a finished run.
type Report struct {
	States map[string]State
	Errors map[string]error
}

// Run executes g and returns the root-cause error of the first failed node,
// if any. It respects cancellation of ctx.
func (e *Executor) Run(ctx context.Context, g *Graph) error {
	_, err := e.RunWithReport(ctx, g)
	return err
}

// RunWithReport is Run that also returns the final state of every node.
func (e *Executor) RunWithReport(ctx context.Context, g *Graph) (*Report, error) {
	logger := ctxlog.FromContext(ctx)
	if err := g.DetectCycles(); err != nil {
		return nil, err
	}

	r := &run{}
	index := make(map[*node]*runNode, len(g.order))
	for _, n := range g.order {
		rn := &runNode{n: n}
		rn.depCount.Store(int32(len(n.depOrder)))
		index[n] = rn
		r.nodes = append(r.nodes, rn)
	}
	for _, rn := range r.nodes {
		for _, d := range rn.n.dependentOrder {
			rn.dependents = append(rn.dependents, index[d])
		}
	}

	readyChan := make(chan *runNode, len(r.nodes))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Debug("Initializing executor, finding root nodes...", "graph", g.Name())
	rootNodeCount := 0
	for _, rn := range r.nodes {
		if rn.depCount.Load() == 0 {
			logger.Debug("Found root node.", "nodeID", rn.id())
			readyChan <- rn
			rootNodeCount++
		}
	}
	logger.Debug("Found all root nodes.", "count", rootNodeCount)

	r.wg.Add(len(r.nodes))

	logger.Debug("Starting worker pool.", "workers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(runCtx, r, readyChan, cancel, i)
	}

	r.wg.Wait()
	close(readyChan)
	logger.Debug("All nodes completed.", "graph", g.Name())

	report := &Report{States: make(map[string]State), Errors: make(map[string]error)}
	for _, rn := range r.nodes {
		report.States[rn.id()] = State(rn.state.Load())
		if rn.err != nil {
			report.Errors[rn.id()] = rn.err
		}
	}

	var failedNodes []string
	var rootCauseError error
	for _, rn := range r.failed {
		// A skip or a cancellation is a symptom, not a cause.
		if errors.Is(rn.err, ErrSkipped) || errors.Is(rn.err, context.Canceled) {
			continue
		}
		failedNodes = append(failedNodes, rn.id())
		if rootCauseError == nil {
			rootCauseError = rn.err
		}
	}
	if rootCauseError != nil {
		return report, fmt.Errorf("execution failed for %s: %w", strings.Join(failedNodes, ", "), rootCauseError)
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (r *run) recordFailure(rn *runNode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, rn)
}

// skip marks rn and all of its transitive dependents as skipped. Each node
// is finished at most once, whichever of skip or a worker gets it first.
func (r *run) skip(ctx context.Context, rn *runNode, cause error) {
	logger := ctxlog.FromContext(ctx)
	if !rn.state.CompareAndSwap(int32(Pending), int32(Skipped)) {
		return
	}
	logger.Warn("Skipping node.", "nodeID", rn.id(), "reason", cause)
	rn.err = fmt.Errorf("%w: %v", ErrSkipped, cause)
	r.wg.Done()
	r.skipDependents(ctx, rn)
}

func (r *run) skipDependents(ctx context.Context, rn *runNode) {
	for _, dependent := range rn.dependents {
		r.skip(ctx, dependent, fmt.Errorf("upstream failure of '%s'", rn.id()))
	}
}
