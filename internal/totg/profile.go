package totg

import (
	"errors"
	"fmt"
)

// Profile configures one TOTG run.
type Profile struct {
	MaxVelocityScaling     float64 `planflow:"max_velocity_scaling"`
	MaxAccelerationScaling float64 `planflow:"max_acceleration_scaling"`
	PathTolerance          float64 `planflow:"path_tolerance"`
	ResampleDT             float64 `planflow:"resample_dt"`
	MinAngleChange         float64 `planflow:"min_angle_change"`
	// Unflatten splits the timed trajectory back into the program's
	// segments. Per-segment scaling needs it.
	Unflatten bool `planflow:"unflatten"`
}

// DefaultProfile returns the profile used when nothing else is configured.
func DefaultProfile() *Profile {
	return &Profile{
		MaxVelocityScaling:     1,
		MaxAccelerationScaling: 1,
		PathTolerance:          0.1,
		ResampleDT:             0.1,
		MinAngleChange:         0.001,
		Unflatten:              true,
	}
}

func (*Profile) ProfileType() string { return "totg" }

// Validate reports values the solver cannot work with.
func (p *Profile) Validate() error {
	var errs []error
	if !(p.MaxVelocityScaling > 0) {
		errs = append(errs, fmt.Errorf("max velocity scaling must be positive, got %g", p.MaxVelocityScaling))
	}
	if !(p.MaxAccelerationScaling > 0) {
		errs = append(errs, fmt.Errorf("max acceleration scaling must be positive, got %g", p.MaxAccelerationScaling))
	}
	if p.PathTolerance < 0 {
		errs = append(errs, fmt.Errorf("path tolerance must not be negative, got %g", p.PathTolerance))
	}
	if p.MinAngleChange < 0 {
		errs = append(errs, fmt.Errorf("min angle change must not be negative, got %g", p.MinAngleChange))
	}
	return errors.Join(errs...)
}
