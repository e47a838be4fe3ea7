package mixgo

import (
	"errors"
	"fmt"
)

var (
	// ErrNoComponents is returned when a request defines no components.
	ErrNoComponents = errors.New("request has no components")
)

// ErrDuplicateComponent indicates two components sharing a name. Names key
// group membership and the export header, so they must be unique.
type ErrDuplicateComponent struct {
	Component string
}

func (e *ErrDuplicateComponent) Error() string {
	return fmt.Sprintf("duplicate component name %q", e.Component)
}

// ErrInvalidTotalBounds indicates an unusable global sum bound
// (minTotal > maxTotal, or a non-finite bound).
type ErrInvalidTotalBounds struct {
	MinTotal float64
	MaxTotal float64
}

func (e *ErrInvalidTotalBounds) Error() string {
	return fmt.Sprintf("invalid total bounds: minTotal=%g maxTotal=%g", e.MinTotal, e.MaxTotal)
}

// ErrInvalidComponent indicates a component field that upstream validation
// must reject before any worker is spawned: a non-finite value, or a
// negative value (partial-sum pruning relies on non-negative components).
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidComponent struct {
	Component string
	Field     string
	Value     float64
	cause     error
}

func (e *ErrInvalidComponent) Error() string {
	return fmt.Sprintf("component %q: invalid %s: %g", e.Component, e.Field, e.Value)
}

func (e *ErrInvalidComponent) Unwrap() error { return e.cause }

// ErrInvalidEpsilon indicates a negative or non-finite tolerance.
type ErrInvalidEpsilon struct {
	Epsilon float64
}

func (e *ErrInvalidEpsilon) Error() string {
	return fmt.Sprintf("invalid epsilon: %g", e.Epsilon)
}
