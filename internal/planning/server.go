package planning

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/planflow/internal/ctxlog"
	"github.com/vk/planflow/internal/env"
	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/process"
	"github.com/vk/planflow/internal/taskflow"
)

var (
	// ErrUnknownGenerator is returned when a request names a generator that
	// is not registered.
	ErrUnknownGenerator = errors.New("unknown generator")
	// ErrInvalidRequest is returned for requests that cannot be planned.
	ErrInvalidRequest = errors.New("invalid planning request")
)

// Server runs planning requests on a shared worker pool.
type Server struct {
	env      env.Environment
	executor *taskflow.Executor

	mu         sync.RWMutex
	generators map[string]process.Generator
}

// NewServer creates a server. workers below one means one worker.
func NewServer(e env.Environment, workers int) *Server {
	return &Server{
		env:        e,
		executor:   taskflow.NewExecutor(workers),
		generators: make(map[string]process.Generator),
	}
}

// RegisterGenerator makes g available under its name.
func (s *Server) RegisterGenerator(g process.Generator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.generators[g.Name()]; exists {
		return fmt.Errorf("generator %q already registered", g.Name())
	}
	s.generators[g.Name()] = g
	return nil
}

// Generator returns the generator registered under name.
func (s *Server) Generator(name string) (process.Generator, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.generators[name]
	return g, ok
}

// GeneratorNames returns the registered names in sorted order.
func (s *Server) GeneratorNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.generators))
}

func (s *Server) Env() env.Environment { return s.env }

// Run builds the task graph for req and starts executing it. The request's
// program is copied; the Future's Results is the tree the tasks mutate.
func (s *Server) Run(ctx context.Context, req Request) (*Future, error) {
	gen, ok := s.Generator(req.Name)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownGenerator, req.Name)
	}
	if req.Instructions == nil {
		return nil, fmt.Errorf("%w: no instructions", ErrInvalidRequest)
	}
	if err := req.Instructions.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	id := uuid.New()
	ctx, logger := ctxlog.With(ctx, "request", req.Name, "run_id", id.String())

	results := req.Instructions.CloneComposite()
	if req.Seed != nil && !req.Seed.IsEmpty() {
		results = req.Seed.CloneComposite()
	}
	if req.Profile != "" {
		results.Profile = req.Profile
	}
	if len(req.EnvState) > 0 || len(req.Commands) > 0 {
		logger.Debug("Request carries environment state the static environment does not apply.",
			"joints", len(req.EnvState), "commands", len(req.Commands))
	}

	input := process.NewInput(
		req.Instructions.CloneComposite(),
		results,
		s.env,
		req.PlanProfileRemapping.Clone(),
		req.CompositeProfileRemapping.Clone(),
	)
	outcome := taskflow.NewOutcome()
	graph := gen.GenerateTaskflow(input, outcome)
	if err := graph.DetectCycles(); err != nil {
		return nil, fmt.Errorf("generator %q built an invalid graph: %w", gen.Name(), err)
	}

	f := &Future{
		ID:      id,
		Outcome: outcome,
		Input:   input,
		Results: results,
		done:    make(chan struct{}),
	}
	logger.Info("Planning request started.", "generator", gen.Name(), "nodes", graph.Len())
	go func() {
		defer close(f.done)
		err := s.executor.Run(ctx, graph)
		if err != nil {
			outcome.Reject(err)
		} else {
			outcome.Resolve()
		}
		f.err = err
		if err := outcome.Err(); err != nil {
			logger.Error("Planning request failed.", "error", err)
			return
		}
		logger.Info("Planning request finished.", "infos", len(input.TaskInfos()))
	}()
	return f, nil
}

// Plan runs req and waits for it to finish.
func (s *Server) Plan(ctx context.Context, req Request) (*instruction.Composite, error) {
	f, err := s.Run(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := f.Wait(ctx); err != nil {
		return f.Results, err
	}
	return f.Results, nil
}
