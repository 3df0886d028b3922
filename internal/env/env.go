// Package env exposes the read-only view of the robot environment that
// pipeline tasks need: the joint limits of each manipulator.
package env

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ErrMissingKinematics is returned when no kinematics are known for a
// manipulator.
var ErrMissingKinematics = errors.New("no kinematics for manipulator")

// Limits holds per-joint limits in joint order.
type Limits struct {
	JointNames   []string
	Velocity     []float64
	Acceleration []float64
}

// Dim returns the number of joints.
func (l Limits) Dim() int { return len(l.JointNames) }

// Validate checks that the vectors agree in length and are strictly positive.
func (l Limits) Validate() error {
	if len(l.Velocity) != len(l.JointNames) || len(l.Acceleration) != len(l.JointNames) {
		return fmt.Errorf("limits for %d joints have %d velocity and %d acceleration entries",
			len(l.JointNames), len(l.Velocity), len(l.Acceleration))
	}
	for i, name := range l.JointNames {
		if !(l.Velocity[i] > 0) || !(l.Acceleration[i] > 0) {
			return fmt.Errorf("joint %q: limits must be positive (velocity=%g, acceleration=%g)", name, l.Velocity[i], l.Acceleration[i])
		}
	}
	return nil
}

func (l Limits) clone() Limits {
	return Limits{
		JointNames:   slices.Clone(l.JointNames),
		Velocity:     slices.Clone(l.Velocity),
		Acceleration: slices.Clone(l.Acceleration),
	}
}

// Environment is consumed read-only by tasks during a planning pass.
type Environment interface {
	// JointLimits returns the limits of the named manipulator, or an error
	// wrapping ErrMissingKinematics.
	JointLimits(manipulator string) (Limits, error)
}

// Static is an in-memory Environment populated before planning starts.
type Static struct {
	mu     sync.RWMutex
	limits map[string]Limits
}

func NewStatic() *Static {
	return &Static{limits: make(map[string]Limits)}
}

// AddManipulator registers the limits of a manipulator.
func (s *Static) AddManipulator(name string, l Limits) error {
	if name == "" {
		return errors.New("manipulator name must not be empty")
	}
	if err := l.Validate(); err != nil {
		return fmt.Errorf("manipulator %q: %w", name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.limits[name] = l.clone()
	return nil
}

func (s *Static) JointLimits(manipulator string) (Limits, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.limits[manipulator]
	if !ok {
		return Limits{}, fmt.Errorf("%w %q", ErrMissingKinematics, manipulator)
	}
	return l.clone(), nil
}

// Manipulators returns the known manipulator names in sorted order.
func (s *Static) Manipulators() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.limits))
}
