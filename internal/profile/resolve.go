package profile

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/vk/planflow/internal/ctxlog"
	"github.com/vk/planflow/internal/instruction"
)

// ErrOverrideType is returned when an instruction carries an override for a
// task that is not of the task's profile type.
var ErrOverrideType = errors.New("profile override has wrong type")

// Source tells where a resolved profile came from.
type Source int

const (
	FromOverride Source = iota
	FromRegistry
	FromDefault
	FromFallback
)

func (s Source) String() string {
	switch s {
	case FromOverride:
		return "override"
	case FromRegistry:
		return "registry"
	case FromDefault:
		return "default"
	default:
		return "fallback"
	}
}

// Lookup resolves name against reg and reports the source of the result.
// A non-nil override always wins and must hold a non-nil T.
func Lookup[T any](ctx context.Context, name string, reg *Registry[T], fallback T, override instruction.Profile) (T, Source, error) {
	if override != nil {
		var zero T
		if isNilValue(override) {
			return zero, FromOverride, fmt.Errorf("%w: got nil %T, want %T", ErrOverrideType, override, zero)
		}
		p, ok := override.(T)
		if !ok {
			return zero, FromOverride, fmt.Errorf("%w: got %T (%s), want %T", ErrOverrideType, override, override.ProfileType(), zero)
		}
		return p, FromOverride, nil
	}
	if reg != nil {
		if p, ok := reg.Get(name); ok {
			return p, FromRegistry, nil
		}
		if p, ok := reg.Get(instruction.DefaultProfile); ok {
			ctxlog.FromContext(ctx).Debug("Profile not found, using DEFAULT.", "profile", name)
			return p, FromDefault, nil
		}
	}
	ctxlog.FromContext(ctx).Debug("Registry has no DEFAULT profile, using fallback.", "profile", name)
	return fallback, FromFallback, nil
}

// Resolve is Lookup without the source.
func Resolve[T any](ctx context.Context, name string, reg *Registry[T], fallback T, override instruction.Profile) (T, error) {
	p, _, err := Lookup(ctx, name, reg, fallback, override)
	return p, err
}

// isNilValue reports whether p wraps a nil pointer, map, slice or func.
func isNilValue(p instruction.Profile) bool {
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
