package lattice

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlab/mixgo/model"
)

func TestBuild_NoDrift(t *testing.T) {
	l, err := Build(model.ComponentSpec{Name: "base", Min: 0, Max: 1, Step: 0.1})
	require.NoError(t, err)

	want := []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0}
	require.Equal(t, len(want), l.Len())
	for i, w := range want {
		// Exact equality on purpose: the decimal lattice must not drift.
		assert.Equal(t, w, l.At(i), "index %d", i)
	}
}

func TestBuild_FixedShortCircuit(t *testing.T) {
	fixedVal := 0.5
	l, err := Build(model.ComponentSpec{
		Name: "solvent", Min: 0, Max: 100, Step: 0.001, Fixed: &fixedVal,
	})
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())
	assert.Equal(t, 0.5, l.At(0))
}

func TestBuild_NonPositiveStep(t *testing.T) {
	for _, step := range []float64{0, -0.1} {
		_, err := Build(model.ComponentSpec{Name: "x", Min: 0, Max: 1, Step: step})
		require.Error(t, err)

		var e *ErrNonPositiveStep
		require.True(t, errors.As(err, &e))
		assert.Equal(t, "x", e.Component)
		assert.Equal(t, step, e.Step)
	}
}

func TestBuild_EmptyFallsBackToMin(t *testing.T) {
	l, err := Build(model.ComponentSpec{Name: "x", Min: 2, Max: 1, Step: 0.5})
	require.NoError(t, err)
	require.Equal(t, 1, l.Len())
	assert.Equal(t, 2.0, l.At(0))
}

func TestBuild_MixedDecimalPlaces(t *testing.T) {
	// Step has fewer decimals than the bounds; the scale must cover all.
	l, err := Build(model.ComponentSpec{Name: "x", Min: 0.05, Max: 0.25, Step: 0.1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.05, 0.15, 0.25}, l.Values())
}

func TestBuild_SingleValueRange(t *testing.T) {
	l, err := Build(model.ComponentSpec{Name: "x", Min: 0.3, Max: 0.3, Step: 0.1})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.3}, l.Values())
}

func TestBuildAll_PropagatesError(t *testing.T) {
	_, err := BuildAll([]model.ComponentSpec{
		{Name: "a", Min: 0, Max: 1, Step: 0.5},
		{Name: "b", Min: 0, Max: 1, Step: 0},
	})
	var e *ErrNonPositiveStep
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "b", e.Component)
}

func TestTotalLeaves(t *testing.T) {
	lattices, err := BuildAll([]model.ComponentSpec{
		{Name: "a", Min: 0, Max: 1, Step: 0.1},  // 11
		{Name: "b", Min: 0, Max: 1, Step: 0.5},  // 3
		{Name: "c", Min: 0, Max: 0.2, Step: 0.1}, // 3
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(11*3*3), TotalLeaves(lattices))
}

func TestSlice(t *testing.T) {
	l, err := Build(model.ComponentSpec{Name: "a", Min: 0, Max: 1, Step: 0.25})
	require.NoError(t, err)
	s := l.Slice(1, 3)
	assert.Equal(t, []float64{0.25, 0.5}, s.Values())
}
