package engine

import (
	"golang.org/x/time/rate"

	"github.com/formlab/mixgo/constraint"
	"github.com/formlab/mixgo/internal/fixed"
	"github.com/formlab/mixgo/lattice"
)

// Searcher enumerates one worker's share of the search space by depth-first
// backtracking over dimension indices.
//
// Aggregate state (partial tuple, per-group mass sums and counts, running
// sum) is a single set of mutable arrays updated with push-before-recurse /
// pop-after-return discipline, so the hot loop allocates nothing and sibling
// branches never observe each other's mutations.
//
// Results are produced in the lexicographic order induced by the
// per-dimension lattice orderings, dimension 0 most significant.
type Searcher struct {
	workerID int
	table    *constraint.Table
	lattices []lattice.Lattice
	shard    lattice.Lattice
	cancel   *Cancel
	events   chan<- Event

	batchSize     int
	maxStored     uint64
	progressEvery uint64
	limiter       *rate.Limiter

	values     []float64
	groupMass  []float64
	groupCount []int32

	processed uint64
	valid     uint64
	stored    uint64
	aborted   bool
	batch     []float64
}

// NewSearcher creates a worker-local searcher. The worker receives the full
// lattices for dimensions 1..k-1 and only its own contiguous shard of
// dimension 0; table and lattices are shared read-only across workers.
func NewSearcher(workerID int, table *constraint.Table, lattices []lattice.Lattice, shard lattice.Lattice, cancel *Cancel, events chan<- Event, opts Options) *Searcher {
	rowLen := len(lattices)
	return &Searcher{
		workerID:      workerID,
		table:         table,
		lattices:      lattices,
		shard:         shard,
		cancel:        cancel,
		events:        events,
		batchSize:     opts.BatchSize,
		maxStored:     uint64(max(opts.MaxStoredPerWorker, 0)),
		progressEvery: opts.ProgressEvery,
		limiter:       opts.ProgressLimiter,
		values:        make([]float64, rowLen),
		groupMass:     make([]float64, table.NumGroups()),
		groupCount:    make([]int32, table.NumGroups()),
		batch:         make([]float64, 0, opts.BatchSize*rowLen),
	}
}

// Run exhausts the worker's shard (or unwinds on cancellation), flushes the
// final partial batch, and emits the terminal Done message. It must be
// called exactly once.
func (s *Searcher) Run() {
	s.search(0, 0)
	s.flush()
	s.events <- Done{
		WorkerID:  s.workerID,
		Processed: s.processed,
		Valid:     s.valid,
		Stored:    s.stored,
		Cancelled: s.aborted,
	}
}

func (s *Searcher) search(depth int, sum float64) {
	if s.cancel.Stopped() {
		s.aborted = true
		return
	}
	if depth == len(s.lattices) {
		s.leaf(sum)
		return
	}

	candidates := s.lattices[depth].Values()
	if depth == 0 {
		candidates = s.shard.Values()
	}
	g := s.table.GroupOf(depth)

	for _, v := range candidates {
		if s.cancel.Stopped() {
			s.aborted = true
			return
		}

		newSum := fixed.Round6(sum + v)
		if s.table.ExceedsTotal(newSum) {
			// Values are non-negative, so no completion of this branch can
			// come back under the bound.
			continue
		}

		// Zero-valued components contribute neither mass nor count.
		contributes := v > 0
		oldMass := s.groupMass[g]
		if contributes {
			s.groupMass[g] = oldMass + v
			s.groupCount[g]++
			if !s.table.CheckPartial(g, fixed.Round6(s.groupMass[g]), s.groupCount[g]) {
				s.groupMass[g] = oldMass
				s.groupCount[g]--
				continue
			}
		}
		if !s.table.CountFeasible(g, s.groupCount[g], depth+1) {
			if contributes {
				s.groupMass[g] = oldMass
				s.groupCount[g]--
			}
			continue
		}

		s.values[depth] = v
		s.search(depth+1, newSum)

		if contributes {
			s.groupMass[g] = oldMass
			s.groupCount[g]--
		}
	}
}

func (s *Searcher) leaf(sum float64) {
	s.processed++
	if s.progressEvery > 0 && s.processed%s.progressEvery == 0 {
		s.maybeProgress()
	}

	if !s.table.WithinTotal(sum) {
		return
	}
	if !s.table.CheckLeaf(s.groupMass, s.groupCount) {
		return
	}
	s.valid++

	// Over-budget valid rows are counted but not retained.
	if s.maxStored > 0 && s.stored >= s.maxStored {
		return
	}
	s.batch = append(s.batch, s.values...)
	s.stored++
	if len(s.batch) >= s.batchSize*len(s.values) {
		s.flush()
	}
}

func (s *Searcher) maybeProgress() {
	if s.limiter != nil && !s.limiter.Allow() {
		return
	}
	s.events <- Progress{WorkerID: s.workerID, Processed: s.processed, Valid: s.valid}
}

// flush ships the buffered rows to the coordinator, transferring ownership
// of the buffer, and starts a fresh one.
func (s *Searcher) flush() {
	if len(s.batch) == 0 {
		return
	}
	rowLen := len(s.values)
	s.events <- ResultBatch{
		WorkerID: s.workerID,
		Rows:     s.batch,
		RowCount: len(s.batch) / rowLen,
	}
	s.batch = make([]float64, 0, s.batchSize*rowLen)
}
