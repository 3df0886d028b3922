package instruction

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongVariant is returned when a value is queried as a variant it is not.
	ErrWrongVariant = errors.New("wrong instruction variant")
	// ErrStartNotFirst is returned when a start move or plan is not the first child of its composite.
	ErrStartNotFirst = errors.New("start instruction must be first")
	// ErrIndexOutOfRange is returned by composite accessors for a bad index.
	ErrIndexOutOfRange = errors.New("child index out of range")
)

func wrongVariant(want string, got any) error {
	return fmt.Errorf("%w: want %s, got %T", ErrWrongVariant, want, got)
}
