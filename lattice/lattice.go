// Package lattice discretizes component ranges into ordered candidate
// sequences.
//
// Each component's (min, max, step) or fixed value is turned into a finite,
// ascending sequence of values on an integer lattice: min, max and step are
// scaled by a power of ten until they are exact integers, enumerated as
// integers, and converted back with 6-decimal-place rounding. This
// eliminates the floating-point drift a naive `v += step` loop accumulates.
package lattice

import (
	"fmt"
	"math"

	"github.com/formlab/mixgo/internal/fixed"
	"github.com/formlab/mixgo/model"
)

// ErrNonPositiveStep indicates a non-fixed component with step <= 0.
//
// This is a validation error raised before any lattice is built, never a
// runtime failure inside the search.
type ErrNonPositiveStep struct {
	Component string
	Step      float64
}

func (e *ErrNonPositiveStep) Error() string {
	return fmt.Sprintf("component %q: step must be positive, got %g", e.Component, e.Step)
}

// Lattice is the ordered, finite sequence of admissible values for one
// component. It is immutable once built and safe to share read-only across
// workers.
type Lattice struct {
	values []float64
}

// Build produces the candidate lattice for a single component.
//
// A fixed component short-circuits to a single-element lattice regardless of
// min/max/step. If the enumerated sequence is empty (min > max), the lattice
// falls back to the single value round6(min) so every dimension contributes
// at least one candidate and tuples are never short.
func Build(spec model.ComponentSpec) (Lattice, error) {
	if spec.Fixed != nil {
		return Lattice{values: []float64{fixed.Round6(*spec.Fixed)}}, nil
	}
	if spec.Step <= 0 || math.IsNaN(spec.Step) {
		return Lattice{}, &ErrNonPositiveStep{Component: spec.Name, Step: spec.Step}
	}

	scale := fixed.Scale(spec.Step, spec.Min, spec.Max)
	lo := int64(math.Round(spec.Min * scale))
	hi := int64(math.Round(spec.Max * scale))
	st := int64(math.Round(spec.Step * scale))
	if st < 1 {
		st = 1
	}

	var values []float64
	for v := lo; v <= hi; v += st {
		values = append(values, fixed.Round6(float64(v)/scale))
	}
	if len(values) == 0 {
		values = []float64{fixed.Round6(spec.Min)}
	}
	return Lattice{values: values}, nil
}

// BuildAll builds one lattice per component, in component order.
func BuildAll(specs []model.ComponentSpec) ([]Lattice, error) {
	lattices := make([]Lattice, len(specs))
	for i, spec := range specs {
		l, err := Build(spec)
		if err != nil {
			return nil, err
		}
		lattices[i] = l
	}
	return lattices, nil
}

// Len returns the number of candidate values.
func (l Lattice) Len() int { return len(l.values) }

// At returns the i-th candidate value.
func (l Lattice) At(i int) float64 { return l.values[i] }

// Values returns the backing slice. Callers must not mutate it.
func (l Lattice) Values() []float64 { return l.values }

// Slice returns the order-preserving sub-lattice [lo, hi).
func (l Lattice) Slice(lo, hi int) Lattice {
	return Lattice{values: l.values[lo:hi]}
}

// TotalLeaves returns the product of all lattice lengths: the number of leaf
// evaluations an unpruned enumeration would perform. Saturates at
// math.MaxUint64.
func TotalLeaves(lattices []Lattice) uint64 {
	total := uint64(1)
	for _, l := range lattices {
		n := uint64(l.Len())
		if n != 0 && total > math.MaxUint64/n {
			return math.MaxUint64
		}
		total *= n
	}
	return total
}
