package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlab/mixgo/model"
)

func collectRows(s *Summary) [][]float64 {
	rows := make([][]float64, 0, s.Results.Len())
	for row := range s.Results.All() {
		cp := make([]float64, len(row))
		copy(cp, row)
		rows = append(rows, cp)
	}
	return rows
}

func TestCoordinator_PartitionCompleteness(t *testing.T) {
	specs := []model.ComponentSpec{
		{Name: "a", Group: "g", Min: 0, Max: 1, Step: 0.2},
		{Name: "b", Group: "g", Min: 0, Max: 1, Step: 0.25},
		{Name: "c", Group: "g", Min: 0, Max: 0.5, Step: 0.25},
	}
	groups := map[string]model.GroupConstraint{
		"g": {MinCount: u32(2)},
	}
	tbl, lattices := compile(t, specs, groups, 0.99, 1.01)

	baseline := NewCoordinator(tbl, lattices, func(o *Options) { o.NumWorkers = 1 })
	base, err := baseline.Run(context.Background())
	require.NoError(t, err)
	require.False(t, base.Cancelled)
	baseRows := collectRows(base)
	sortRows(baseRows)
	require.NotEmpty(t, baseRows)

	for w := 1; w <= lattices[0].Len(); w++ {
		coord := NewCoordinator(tbl, lattices, func(o *Options) { o.NumWorkers = w })
		got, err := coord.Run(context.Background())
		require.NoError(t, err, "w=%d", w)

		gotRows := collectRows(got)
		sortRows(gotRows)
		assert.Equal(t, baseRows, gotRows, "w=%d: parallelism must not change the result set", w)
		assert.Equal(t, base.Processed, got.Processed, "w=%d", w)
		assert.Equal(t, base.Valid, got.Valid, "w=%d", w)
	}
}

func TestCoordinator_ProgressMonotonicAndFinal(t *testing.T) {
	specs := []model.ComponentSpec{
		{Name: "a", Group: "g", Min: 0, Max: 1, Step: 0.1},
		{Name: "b", Group: "g", Min: 0, Max: 1, Step: 0.1},
	}
	tbl, lattices := compile(t, specs, nil, 0, 10)

	var snaps []Snapshot
	coord := NewCoordinator(tbl, lattices, func(o *Options) {
		o.NumWorkers = 3
		o.ProgressEvery = 8
		o.OnProgress = func(s Snapshot) { snaps = append(snaps, s) }
	})

	summary, err := coord.Run(context.Background())
	require.NoError(t, err)

	var prev uint64
	for _, s := range snaps {
		require.GreaterOrEqual(t, s.Processed, prev, "merged processed must never decrease")
		prev = s.Processed
	}
	require.NotEmpty(t, snaps)
	last := snaps[len(snaps)-1]
	assert.Equal(t, 100.0, last.Percent, "progress finalizes at 100%% when all workers are done")
	assert.Equal(t, uint64(121), summary.Processed)
	assert.Equal(t, summary.TotalExpected, summary.Processed, "no pruning under wide bounds")
}

func TestCoordinator_Cancellation(t *testing.T) {
	// Large space so cancellation lands mid-run.
	specs := make([]model.ComponentSpec, 6)
	for i := range specs {
		specs[i] = model.ComponentSpec{Name: string(rune('a' + i)), Group: "g", Min: 0, Max: 1, Step: 0.1}
	}
	tbl, lattices := compile(t, specs, nil, 0.99, 1.01)

	coord := NewCoordinator(tbl, lattices, func(o *Options) {
		o.NumWorkers = 2
		o.ProgressEvery = 64
	})
	coord.opts.OnProgress = func(Snapshot) { coord.Stop() }

	summary, err := coord.Run(context.Background())
	require.NoError(t, err, "cancellation is a terminal state, not an error")
	assert.True(t, summary.Cancelled)
	assert.Less(t, summary.Processed, summary.TotalExpected)
	assert.Len(t, summary.PerWorker, 2, "every worker acknowledged with Done")
}

func TestCoordinator_ContextCancellation(t *testing.T) {
	specs := make([]model.ComponentSpec, 6)
	for i := range specs {
		specs[i] = model.ComponentSpec{Name: string(rune('a' + i)), Group: "g", Min: 0, Max: 1, Step: 0.1}
	}
	tbl, lattices := compile(t, specs, nil, 0.99, 1.01)

	ctx, cancel := context.WithCancel(context.Background())
	coord := NewCoordinator(tbl, lattices, func(o *Options) {
		o.NumWorkers = 2
		o.ProgressEvery = 64
		o.OnProgress = func(Snapshot) { cancel() }
	})

	summary, err := coord.Run(ctx)
	require.NoError(t, err)
	assert.True(t, summary.Cancelled)
}

func TestCoordinator_DisplayTruncation(t *testing.T) {
	specs := []model.ComponentSpec{
		{Name: "a", Group: "g", Min: 0, Max: 1, Step: 0.1},
		{Name: "b", Group: "g", Min: 0, Max: 1, Step: 0.1},
	}
	tbl, lattices := compile(t, specs, nil, 0, 10)

	coord := NewCoordinator(tbl, lattices, func(o *Options) {
		o.NumWorkers = 1
		o.MaxDisplayRows = 10
	})
	summary, err := coord.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 121, summary.Results.Len(), "export accumulator is unbounded")
	assert.Len(t, summary.Results.DisplayRows(), 10)
	assert.True(t, summary.Results.Truncated())
}

func TestCoordinator_IdempotentRerun(t *testing.T) {
	specs := []model.ComponentSpec{
		{Name: "a", Group: "g", Min: 0, Max: 1, Step: 0.25},
		{Name: "b", Group: "g", Min: 0, Max: 1, Step: 0.25},
	}
	tbl, lattices := compile(t, specs, nil, 0.99, 1.01)

	coord := NewCoordinator(tbl, lattices, func(o *Options) { o.NumWorkers = 2 })

	first, err := coord.Run(context.Background())
	require.NoError(t, err)
	second, err := coord.Run(context.Background())
	require.NoError(t, err)

	a, b := collectRows(first), collectRows(second)
	sortRows(a)
	sortRows(b)
	assert.Equal(t, a, b)
	assert.Equal(t, first.Processed, second.Processed)
}

func TestCoordinator_RejectsConcurrentRun(t *testing.T) {
	specs := []model.ComponentSpec{
		{Name: "a", Group: "g", Min: 0, Max: 1, Step: 0.1},
	}
	tbl, lattices := compile(t, specs, nil, 0, 10)
	coord := NewCoordinator(tbl, lattices)

	// Simulate an in-flight run.
	require.True(t, coord.running.CompareAndSwap(false, true))
	defer coord.running.Store(false)

	_, err := coord.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)
}
