package constraint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlab/mixgo/model"
)

func f64(v float64) *float64 { return &v }
func u32(v uint32) *uint32   { return &v }

func testComponents() []model.ComponentSpec {
	return []model.ComponentSpec{
		{Name: "oil", Group: "base", Min: 0, Max: 1, Step: 0.1},
		{Name: "wax", Group: "base", Min: 0, Max: 1, Step: 0.1},
		{Name: "scent", Group: "additive", Min: 0, Max: 0.1, Step: 0.01},
	}
}

func TestCompile_InternsGroups(t *testing.T) {
	tbl, err := Compile(testComponents(), map[string]model.GroupConstraint{
		"base":     {MaxMass: f64(0.9)},
		"additive": {MaxCount: u32(1)},
	}, 0.99, 1.01, model.DefaultEpsilon)
	require.NoError(t, err)

	require.Equal(t, 2, tbl.NumGroups())
	base := tbl.GroupOf(0)
	assert.Equal(t, base, tbl.GroupOf(1))
	assert.NotEqual(t, base, tbl.GroupOf(2))
	assert.Equal(t, "base", tbl.GroupName(base))

	assert.Equal(t, []uint32{0, 1}, tbl.Members(base).ToArray())
}

func TestCompile_ConstraintOnlyGroup(t *testing.T) {
	tbl, err := Compile(testComponents(), map[string]model.GroupConstraint{
		"phantom": {MinCount: u32(1)},
	}, 0, 10, model.DefaultEpsilon)
	require.NoError(t, err)
	require.Equal(t, 3, tbl.NumGroups())

	// A minCount on a group with no members rejects every tuple.
	masses := make([]float64, tbl.NumGroups())
	counts := make([]int32, tbl.NumGroups())
	assert.False(t, tbl.CheckLeaf(masses, counts))
}

func TestCompile_RejectsNonFinite(t *testing.T) {
	bad := map[string]model.GroupConstraint{"base": {MaxMass: f64(math.NaN())}}
	_, err := Compile(testComponents(), bad, 0, 1, model.DefaultEpsilon)
	require.Error(t, err)

	bad = map[string]model.GroupConstraint{"base": {MinMass: f64(math.Inf(1))}}
	_, err = Compile(testComponents(), bad, 0, 1, model.DefaultEpsilon)
	require.Error(t, err)
}

func TestFixedMassDominatesMaxMass(t *testing.T) {
	tbl, err := Compile(testComponents(), map[string]model.GroupConstraint{
		"base": {FixedMass: f64(0.5), MaxMass: f64(0.9)},
	}, 0, 10, model.DefaultEpsilon)
	require.NoError(t, err)
	base := tbl.GroupOf(0)

	// Partial pruning collapses to the fixed value, not the looser max.
	assert.True(t, tbl.CheckPartial(base, 0.5, 1))
	assert.False(t, tbl.CheckPartial(base, 0.6, 1))

	// Leaf requires an exact match within epsilon.
	masses := []float64{0.5}
	counts := []int32{1}
	assert.True(t, tbl.CheckLeaf(masses, counts))
	masses[0] = 0.4
	assert.False(t, tbl.CheckLeaf(masses, counts))
}

func TestCheckPartial_MaxCount(t *testing.T) {
	tbl, err := Compile(testComponents(), map[string]model.GroupConstraint{
		"base": {MaxCount: u32(1)},
	}, 0, 10, model.DefaultEpsilon)
	require.NoError(t, err)
	base := tbl.GroupOf(0)

	assert.True(t, tbl.CheckPartial(base, 1.0, 1))
	assert.False(t, tbl.CheckPartial(base, 1.0, 2))
}

func TestCheckLeaf_Bounds(t *testing.T) {
	tbl, err := Compile(testComponents(), map[string]model.GroupConstraint{
		"base":     {MinMass: f64(0.4), MaxMass: f64(0.6), MinCount: u32(1)},
		"additive": {MaxCount: u32(1)},
	}, 0, 10, model.DefaultEpsilon)
	require.NoError(t, err)

	base := tbl.GroupOf(0)
	add := tbl.GroupOf(2)
	masses := make([]float64, tbl.NumGroups())
	counts := make([]int32, tbl.NumGroups())

	masses[base], counts[base] = 0.5, 1
	masses[add], counts[add] = 0.01, 1
	assert.True(t, tbl.CheckLeaf(masses, counts))

	masses[base] = 0.39
	assert.False(t, tbl.CheckLeaf(masses, counts), "below minMass")
	masses[base] = 0.61
	assert.False(t, tbl.CheckLeaf(masses, counts), "above maxMass")

	masses[base], counts[base] = 0.5, 0
	assert.False(t, tbl.CheckLeaf(masses, counts), "below minCount")

	masses[base], counts[base] = 0.5, 1
	counts[add] = 2
	assert.False(t, tbl.CheckLeaf(masses, counts), "above maxCount")
}

func TestCheckLeaf_ToleranceAbsorbsRounding(t *testing.T) {
	tbl, err := Compile(testComponents(), map[string]model.GroupConstraint{
		"base": {FixedMass: f64(0.3)},
	}, 0, 10, model.DefaultEpsilon)
	require.NoError(t, err)

	// 0.1+0.1+0.1 in float64 is not exactly 0.3; the 6dp rounding plus
	// epsilon must absorb it.
	masses := []float64{0.1 + 0.1 + 0.1}
	counts := []int32{3}
	assert.True(t, tbl.CheckLeaf(masses, counts))
}

func TestCountFeasible(t *testing.T) {
	tbl, err := Compile(testComponents(), map[string]model.GroupConstraint{
		"base": {MinCount: u32(2)},
	}, 0, 10, model.DefaultEpsilon)
	require.NoError(t, err)
	base := tbl.GroupOf(0)

	// Both base members still ahead of dimension 0.
	assert.True(t, tbl.CountFeasible(base, 0, 0))
	// One base member ahead of dimension 1: count 1 can still reach 2.
	assert.True(t, tbl.CountFeasible(base, 1, 1))
	// No base members at dimension >= 2: count 1 can never reach 2.
	assert.False(t, tbl.CountFeasible(base, 1, 2))
	assert.True(t, tbl.CountFeasible(base, 2, 2))
}

func TestTotalBounds(t *testing.T) {
	tbl, err := Compile(testComponents(), nil, 0.99, 1.01, model.DefaultEpsilon)
	require.NoError(t, err)

	assert.False(t, tbl.ExceedsTotal(1.01))
	assert.False(t, tbl.ExceedsTotal(1.01+1e-7))
	assert.True(t, tbl.ExceedsTotal(1.02))

	assert.True(t, tbl.WithinTotal(1.0))
	assert.True(t, tbl.WithinTotal(0.99))
	assert.True(t, tbl.WithinTotal(1.01))
	assert.False(t, tbl.WithinTotal(0.98))
	assert.False(t, tbl.WithinTotal(1.02))
}
