package engine

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formlab/mixgo/constraint"
	"github.com/formlab/mixgo/lattice"
	"github.com/formlab/mixgo/model"
)

func f64(v float64) *float64 { return &v }
func u32(v uint32) *uint32   { return &v }

func compile(t *testing.T, specs []model.ComponentSpec, groups map[string]model.GroupConstraint, minTotal, maxTotal float64) (*constraint.Table, []lattice.Lattice) {
	t.Helper()
	lattices, err := lattice.BuildAll(specs)
	require.NoError(t, err)
	tbl, err := constraint.Compile(specs, groups, minTotal, maxTotal, model.DefaultEpsilon)
	require.NoError(t, err)
	return tbl, lattices
}

// runWorker drives a single searcher over the given dimension-0 shard and
// collects everything it emits.
func runWorker(t *testing.T, tbl *constraint.Table, lattices []lattice.Lattice, shard lattice.Lattice, optFns ...func(*Options)) ([][]float64, []Progress, Done) {
	t.Helper()
	opts := applyOptions(optFns)
	events := make(chan Event, 16)
	s := NewSearcher(0, tbl, lattices, shard, NewCancel(), events, opts)
	go s.Run()

	var rows [][]float64
	var progress []Progress
	for {
		switch m := (<-events).(type) {
		case Progress:
			progress = append(progress, m)
		case ResultBatch:
			for i := 0; i < m.RowCount; i++ {
				row := make([]float64, len(lattices))
				copy(row, m.Rows[i*len(lattices):(i+1)*len(lattices)])
				rows = append(rows, row)
			}
		case Done:
			return rows, progress, m
		}
	}
}

func sortRows(rows [][]float64) {
	sort.Slice(rows, func(i, j int) bool {
		return fmt.Sprint(rows[i]) < fmt.Sprint(rows[j])
	})
}

func TestSearcher_SumBoundAcceptance(t *testing.T) {
	specs := []model.ComponentSpec{
		{Name: "a", Group: "g", Min: 0, Max: 1, Step: 0.5},
		{Name: "b", Group: "g", Min: 0, Max: 1, Step: 0.5},
	}
	tbl, lattices := compile(t, specs, nil, 0.99, 1.01)

	rows, _, done := runWorker(t, tbl, lattices, lattices[0])

	want := [][]float64{{0, 1}, {0.5, 0.5}, {1, 0}}
	require.Equal(t, want, rows, "rows must arrive in lexicographic order")

	// Leaves surviving the prefix prune: 3 under a=0, 2 under a=0.5, 1 under a=1.
	assert.Equal(t, uint64(6), done.Processed)
	assert.Equal(t, uint64(3), done.Valid)
	assert.Equal(t, uint64(3), done.Stored)
	assert.False(t, done.Cancelled)
}

func TestSearcher_GroupMaxCountPruning(t *testing.T) {
	specs := []model.ComponentSpec{
		{Name: "a1", Group: "A", Min: 0, Max: 1, Step: 0.5},
		{Name: "a2", Group: "A", Min: 0, Max: 1, Step: 0.5},
	}
	tbl, lattices := compile(t, specs, map[string]model.GroupConstraint{
		"A": {MaxCount: u32(1)},
	}, 0, 10)

	rows, _, _ := runWorker(t, tbl, lattices, lattices[0])
	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.False(t, row[0] > 0 && row[1] > 0, "tuple %v has two nonzero group-A members", row)
	}
}

func TestSearcher_ZeroValuesDoNotCount(t *testing.T) {
	specs := []model.ComponentSpec{
		{Name: "a1", Group: "A", Min: 0, Max: 1, Step: 1},
		{Name: "a2", Group: "A", Min: 0, Max: 1, Step: 1},
	}
	tbl, lattices := compile(t, specs, map[string]model.GroupConstraint{
		"A": {MinCount: u32(1)},
	}, 0, 10)

	rows, _, _ := runWorker(t, tbl, lattices, lattices[0])
	sortRows(rows)
	assert.Equal(t, [][]float64{{0, 1}, {1, 0}, {1, 1}}, rows)
}

func TestSearcher_FixedMassGroup(t *testing.T) {
	specs := []model.ComponentSpec{
		{Name: "a", Group: "A", Min: 0, Max: 1, Step: 0.25},
		{Name: "b", Group: "B", Min: 0, Max: 1, Step: 0.25},
	}
	tbl, lattices := compile(t, specs, map[string]model.GroupConstraint{
		"A": {FixedMass: f64(0.5)},
	}, 0, 10)

	rows, _, _ := runWorker(t, tbl, lattices, lattices[0])
	require.NotEmpty(t, rows)
	for _, row := range rows {
		assert.InDelta(t, 0.5, row[0], 1e-9)
	}
	// Group B is unconstrained, so all 5 of its values pair with a=0.5.
	assert.Len(t, rows, 5)
}

func TestSearcher_ProgressMonotonicAndExact(t *testing.T) {
	specs := []model.ComponentSpec{
		{Name: "a", Group: "g", Min: 0, Max: 1, Step: 0.5},
		{Name: "b", Group: "g", Min: 0, Max: 1, Step: 0.5},
	}
	// Wide bounds: no pruning, every leaf is evaluated.
	tbl, lattices := compile(t, specs, nil, 0, 10)

	_, progress, done := runWorker(t, tbl, lattices, lattices[0], func(o *Options) {
		o.ProgressEvery = 1
	})

	require.NotEmpty(t, progress)
	var prev uint64
	for _, p := range progress {
		require.GreaterOrEqual(t, p.Processed, prev)
		prev = p.Processed
	}
	assert.Equal(t, uint64(9), done.Processed, "full leaf count of the shard")
}

func TestSearcher_MaxStoredBudget(t *testing.T) {
	specs := []model.ComponentSpec{
		{Name: "a", Group: "g", Min: 0, Max: 1, Step: 0.1},
		{Name: "b", Group: "g", Min: 0, Max: 1, Step: 0.1},
	}
	tbl, lattices := compile(t, specs, nil, 0, 10)

	rows, _, done := runWorker(t, tbl, lattices, lattices[0], func(o *Options) {
		o.MaxStoredPerWorker = 5
	})

	assert.Equal(t, uint64(121), done.Valid, "over-budget rows still counted")
	assert.Equal(t, uint64(5), done.Stored)
	assert.Len(t, rows, 5)
}

func TestSearcher_CancelledBeforeStart(t *testing.T) {
	specs := []model.ComponentSpec{
		{Name: "a", Group: "g", Min: 0, Max: 1, Step: 0.5},
	}
	tbl, lattices := compile(t, specs, nil, 0, 10)

	cancel := NewCancel()
	cancel.Stop()
	events := make(chan Event, 4)
	s := NewSearcher(0, tbl, lattices, lattices[0], cancel, events, applyOptions(nil))
	go s.Run()

	m := <-events
	done, ok := m.(Done)
	require.True(t, ok, "a cancelled worker must still emit Done, got %T", m)
	assert.True(t, done.Cancelled)
	assert.Zero(t, done.Processed)
}

func TestSearcher_BatchSizeFlush(t *testing.T) {
	specs := []model.ComponentSpec{
		{Name: "a", Group: "g", Min: 0, Max: 1, Step: 0.1},
	}
	tbl, lattices := compile(t, specs, nil, 0, 10)

	events := make(chan Event, 64)
	opts := applyOptions([]func(*Options){func(o *Options) { o.BatchSize = 4 }})
	s := NewSearcher(0, tbl, lattices, lattices[0], NewCancel(), events, opts)
	go s.Run()

	var batches []int
	for {
		m := <-events
		if b, ok := m.(ResultBatch); ok {
			batches = append(batches, b.RowCount)
			continue
		}
		if _, ok := m.(Done); ok {
			break
		}
	}
	// 11 valid rows in batches of 4: 4, 4, then a final partial flush of 3.
	assert.Equal(t, []int{4, 4, 3}, batches)
}
