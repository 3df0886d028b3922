package profile

import (
	"maps"
	"slices"
	"sync"

	"github.com/vk/planflow/internal/instruction"
)

// Registry maps profile names to the configuration objects of one task type.
// Registered values are shared with every task run that resolves them and
// must not be mutated afterwards.
type Registry[T any] struct {
	mu       sync.RWMutex
	profiles map[string]T
}

// NewRegistry creates a registry seeded with def under "DEFAULT".
func NewRegistry[T any](def T) *Registry[T] {
	return &Registry[T]{profiles: map[string]T{instruction.DefaultProfile: def}}
}

// Register adds or replaces the profile stored under name.
func (r *Registry[T]) Register(name string, p T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[name] = p
}

// Remove deletes name from the registry. Removing "DEFAULT" is allowed; the
// resolver then falls back to the caller's default.
func (r *Registry[T]) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, name)
}

// Get returns the profile registered under name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[name]
	return p, ok
}

// Names returns the registered names in sorted order.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.profiles))
}

func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}
