package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/process"
)

// ErrNotFound is returned when a task or generator name is not registered.
var ErrNotFound = errors.New("not registered")

// Module is the interface that all pipeline modules implement to be registered.
type Module interface {
	Register(r *Registry)
}

// ProfileOwner is a task that keeps a named profile registry.
type ProfileOwner interface {
	process.Task
	// NewProfile returns a profile holding the task's defaults, ready to
	// be decoded into.
	NewProfile() instruction.Profile
	RegisterProfile(name string, p instruction.Profile) error
	ProfileNames() []string
}

// Registry holds the tasks and generators of one application instance.
type Registry struct {
	tasks      map[string]process.Task
	generators map[string]process.Generator
}

func New() *Registry {
	return &Registry{
		tasks:      make(map[string]process.Task),
		generators: make(map[string]process.Generator),
	}
}

// RegisterTask makes a leaf task available by its name.
func (r *Registry) RegisterTask(t process.Task) {
	if _, exists := r.tasks[t.Name()]; exists {
		panic(fmt.Sprintf("task with name '%s' already registered", t.Name()))
	}
	slog.Debug("Registering task.", "name", t.Name())
	r.tasks[t.Name()] = t
}

// RegisterGenerator makes a generator available by its name.
func (r *Registry) RegisterGenerator(g process.Generator) {
	if _, exists := r.generators[g.Name()]; exists {
		panic(fmt.Sprintf("generator with name '%s' already registered", g.Name()))
	}
	slog.Debug("Registering generator.", "name", g.Name())
	r.generators[g.Name()] = g
}

func (r *Registry) Task(name string) (process.Task, bool) {
	t, ok := r.tasks[name]
	return t, ok
}

func (r *Registry) Generator(name string) (process.Generator, bool) {
	g, ok := r.generators[name]
	return g, ok
}

func (r *Registry) TaskNames() []string      { return slices.Sorted(maps.Keys(r.tasks)) }
func (r *Registry) GeneratorNames() []string { return slices.Sorted(maps.Keys(r.generators)) }

// Generators returns every registered generator, sorted by name.
func (r *Registry) Generators() []process.Generator {
	out := make([]process.Generator, 0, len(r.generators))
	for _, name := range r.GeneratorNames() {
		out = append(out, r.generators[name])
	}
	return out
}

// Sequential builds a generator that runs the named tasks in order.
func (r *Registry) Sequential(name string, taskNames ...string) (*process.SequentialGenerator, error) {
	if len(taskNames) == 0 {
		return nil, fmt.Errorf("pipeline %q has no tasks", name)
	}
	tasks := make([]process.Task, 0, len(taskNames))
	for _, tn := range taskNames {
		t, ok := r.tasks[tn]
		if !ok {
			return nil, fmt.Errorf("pipeline %q: task %q %w", name, tn, ErrNotFound)
		}
		tasks = append(tasks, t)
	}
	return process.NewSequentialGenerator(name, tasks...), nil
}

// Raster builds a raster generator from three registered generators.
func (r *Registry) Raster(name, freespace, transition, raster string) (*process.RasterGenerator, error) {
	var gens [3]process.Generator
	for i, gn := range []string{freespace, transition, raster} {
		g, ok := r.generators[gn]
		if !ok {
			return nil, fmt.Errorf("raster pipeline %q: generator %q %w", name, gn, ErrNotFound)
		}
		gens[i] = g
	}
	return process.NewRasterGenerator(gens[0], gens[1], gens[2]).WithName(name), nil
}

// RegisterProfile stores p under name in the registry of the named task.
func (r *Registry) RegisterProfile(task, name string, p instruction.Profile) error {
	owner, err := r.profileOwner(task)
	if err != nil {
		return err
	}
	if err := owner.RegisterProfile(name, p); err != nil {
		return fmt.Errorf("task %q, profile %q: %w", task, name, err)
	}
	slog.Debug("Registered profile.", "task", task, "profile", name)
	return nil
}

// ProfileNames returns the profile names of every task that owns profiles.
func (r *Registry) ProfileNames() map[string][]string {
	out := make(map[string][]string)
	for name, t := range r.tasks {
		if owner, ok := t.(ProfileOwner); ok {
			out[name] = owner.ProfileNames()
		}
	}
	return out
}

func (r *Registry) profileOwner(task string) (ProfileOwner, error) {
	t, ok := r.tasks[task]
	if !ok {
		return nil, fmt.Errorf("task %q %w", task, ErrNotFound)
	}
	owner, ok := t.(ProfileOwner)
	if !ok {
		return nil, fmt.Errorf("task %q does not take profiles", task)
	}
	return owner, nil
}
