// Package constraint compiles per-group aggregate rules and the global sum
// bound into a form the enumeration hot loop can evaluate without string
// lookups or map access.
//
// Group names from the request are interned into dense integer ids once at
// compile time. Per-group bounds are stored in flat arrays indexed by
// GroupID; group membership is tracked in Roaring bitmaps, from which a
// suffix count table is derived for minCount infeasibility pruning.
package constraint

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/formlab/mixgo/internal/fixed"
	"github.com/formlab/mixgo/model"
)

const unsetCount = int32(-1)

// Table is the compiled constraint set for one run. It is immutable once
// built and safe to share read-only across workers.
type Table struct {
	names          []string
	idByName       map[string]model.GroupID
	componentGroup []model.GroupID

	// Per-group bounds, indexed by GroupID. NaN means unset for masses,
	// unsetCount for counts. effMaxMass folds FixedMass dominance in:
	// when FixedMass is set it replaces MaxMass for pruning.
	minMass    []float64
	effMaxMass []float64
	fixedMass  []float64
	minCount   []int32
	maxCount   []int32

	constrained []bool

	members []*roaring.Bitmap
	// suffix[g][d] counts members of group g at dimension index >= d.
	// suffix[g][len(components)] == 0.
	suffix [][]int32

	minTotal float64
	maxTotal float64
	epsilon  float64
}

// Compile interns group names and flattens constraints for the given
// component ordering.
//
// Groups named only in the constraints map (with no member components) are
// still interned so their leaf checks apply: a minMass or minCount on an
// empty group correctly rejects every tuple.
func Compile(components []model.ComponentSpec, groups map[string]model.GroupConstraint, minTotal, maxTotal, epsilon float64) (*Table, error) {
	t := &Table{
		idByName:       make(map[string]model.GroupID),
		componentGroup: make([]model.GroupID, len(components)),
		minTotal:       minTotal,
		maxTotal:       maxTotal,
		epsilon:        epsilon,
	}

	intern := func(name string) model.GroupID {
		if id, ok := t.idByName[name]; ok {
			return id
		}
		id := model.GroupID(len(t.names))
		t.idByName[name] = id
		t.names = append(t.names, name)
		t.members = append(t.members, roaring.New())
		return id
	}

	for i, c := range components {
		g := intern(c.Group)
		t.componentGroup[i] = g
		t.members[g].Add(uint32(i))
	}
	for name := range groups {
		intern(name)
	}

	n := len(t.names)
	t.minMass = make([]float64, n)
	t.effMaxMass = make([]float64, n)
	t.fixedMass = make([]float64, n)
	t.minCount = make([]int32, n)
	t.maxCount = make([]int32, n)
	t.constrained = make([]bool, n)
	for g := 0; g < n; g++ {
		t.minMass[g] = math.NaN()
		t.effMaxMass[g] = math.NaN()
		t.fixedMass[g] = math.NaN()
		t.minCount[g] = unsetCount
		t.maxCount[g] = unsetCount
	}

	for name, gc := range groups {
		g := t.idByName[name]
		if err := checkFinite(name, "minMass", gc.MinMass); err != nil {
			return nil, err
		}
		if err := checkFinite(name, "maxMass", gc.MaxMass); err != nil {
			return nil, err
		}
		if err := checkFinite(name, "fixedMass", gc.FixedMass); err != nil {
			return nil, err
		}
		if gc.MinMass != nil {
			t.minMass[g] = *gc.MinMass
		}
		if gc.MaxMass != nil {
			t.effMaxMass[g] = *gc.MaxMass
		}
		if gc.FixedMass != nil {
			t.fixedMass[g] = *gc.FixedMass
			t.effMaxMass[g] = *gc.FixedMass
		}
		if gc.MinCount != nil {
			t.minCount[g] = int32(*gc.MinCount)
		}
		if gc.MaxCount != nil {
			t.maxCount[g] = int32(*gc.MaxCount)
		}
		t.constrained[g] = !gc.IsZero()
	}

	t.suffix = make([][]int32, n)
	for g := 0; g < n; g++ {
		s := make([]int32, len(components)+1)
		for d := len(components) - 1; d >= 0; d-- {
			s[d] = s[d+1]
			if t.componentGroup[d] == model.GroupID(g) {
				s[d]++
			}
		}
		t.suffix[g] = s
	}

	return t, nil
}

func checkFinite(group, field string, v *float64) error {
	if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
		return fmt.Errorf("group %q: %s must be finite, got %g", group, field, *v)
	}
	return nil
}

// NumGroups returns the number of interned groups.
func (t *Table) NumGroups() int { return len(t.names) }

// GroupName returns the original name of an interned group.
func (t *Table) GroupName(g model.GroupID) string { return t.names[g] }

// GroupOf returns the group owning the given dimension.
func (t *Table) GroupOf(dim int) model.GroupID { return t.componentGroup[dim] }

// Members returns the bitmap of component indices belonging to a group.
// Callers must not mutate it.
func (t *Table) Members(g model.GroupID) *roaring.Bitmap { return t.members[g] }

// Epsilon returns the comparison tolerance.
func (t *Table) Epsilon() float64 { return t.epsilon }

// MinTotal returns the lower global sum bound.
func (t *Table) MinTotal() float64 { return t.minTotal }

// MaxTotal returns the upper global sum bound.
func (t *Table) MaxTotal() float64 { return t.maxTotal }

// ExceedsTotal reports whether a partial sum already violates the upper
// bound. Valid as a pruning test only because component values are
// non-negative, so partial sums are monotonically non-decreasing.
func (t *Table) ExceedsTotal(sum float64) bool {
	return sum > t.maxTotal+t.epsilon
}

// WithinTotal reports whether a full-tuple sum satisfies both global bounds.
func (t *Table) WithinTotal(sum float64) bool {
	return sum >= t.minTotal-t.epsilon && sum <= t.maxTotal+t.epsilon
}

// CheckPartial re-checks the upper-bound constraints of one group against
// its updated partial aggregates. Lower bounds (minMass, minCount) cannot
// fail on a partial tuple and are left to the leaf check.
func (t *Table) CheckPartial(g model.GroupID, mass float64, count int32) bool {
	if max := t.effMaxMass[g]; !math.IsNaN(max) && mass > max+t.epsilon {
		return false
	}
	if mc := t.maxCount[g]; mc != unsetCount && count > mc {
		return false
	}
	return true
}

// CountFeasible reports whether group g can still reach its minCount given
// its current count and the number of member components at dimensions
// >= nextDim. Every remaining member counts at most once (and only with a
// nonzero value), so this is a safe upper bound.
func (t *Table) CountFeasible(g model.GroupID, count int32, nextDim int) bool {
	mc := t.minCount[g]
	if mc == unsetCount {
		return true
	}
	return count+t.suffix[g][nextDim] >= mc
}

// CheckLeaf evaluates every group's aggregate constraints on a full tuple,
// short-circuiting on the first failing group. Masses are rounded to
// 6 decimal places before comparison. A group with no constraints always
// passes.
func (t *Table) CheckLeaf(masses []float64, counts []int32) bool {
	for g := range t.names {
		if !t.constrained[g] {
			continue
		}
		m := fixed.Round6(masses[g])
		if f := t.fixedMass[g]; !math.IsNaN(f) {
			if math.Abs(m-f) > t.epsilon {
				return false
			}
		} else {
			if min := t.minMass[g]; !math.IsNaN(min) && m < min-t.epsilon {
				return false
			}
			if max := t.effMaxMass[g]; !math.IsNaN(max) && m > max+t.epsilon {
				return false
			}
		}
		if mc := t.minCount[g]; mc != unsetCount && counts[g] < mc {
			return false
		}
		if mc := t.maxCount[g]; mc != unsetCount && counts[g] > mc {
			return false
		}
	}
	return true
}
