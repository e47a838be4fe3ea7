package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/formlab/mixgo/constraint"
	"github.com/formlab/mixgo/lattice"
)

// Snapshot is the coordinator's merged view of run progress. Percent is
// totalProcessed / totalExpected where totalExpected is the product of all
// lattice lengths; it is finalized at 100 when every worker has reported
// Done on a non-cancelled run (pruning makes processed < totalExpected on
// constrained spaces).
type Snapshot struct {
	Processed     uint64
	Valid         uint64
	Stored        uint64
	TotalExpected uint64
	Percent       float64
	WorkersDone   int
	Workers       int
}

// Summary is the terminal state of one run.
type Summary struct {
	Snapshot
	Cancelled bool
	Elapsed   time.Duration
	PerWorker []Done
	Results   *ResultSet
}

// Coordinator owns one enumeration workload: it partitions dimension 0
// across workers, drains their Progress/ResultBatch/Done messages, and is
// the only goroutine that mutates aggregate state.
//
// A coordinator may be reused for sequential runs of the same request;
// concurrent Run calls are rejected.
type Coordinator struct {
	table    *constraint.Table
	lattices []lattice.Lattice
	opts     Options
	logger   *slog.Logger

	totalExpected uint64
	running       atomic.Bool
	current       atomic.Pointer[Cancel]
}

// NewCoordinator creates a coordinator over prebuilt lattices and a compiled
// constraint table. Both are treated as immutable for every run.
func NewCoordinator(table *constraint.Table, lattices []lattice.Lattice, optFns ...func(*Options)) *Coordinator {
	opts := applyOptions(optFns)
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{
		table:         table,
		lattices:      lattices,
		opts:          opts,
		logger:        logger,
		totalExpected: lattice.TotalLeaves(lattices),
	}
}

// TotalExpected returns the product of all lattice lengths: the leaf count
// of the unpruned space.
func (c *Coordinator) TotalExpected() uint64 { return c.totalExpected }

// Stop requests cooperative cancellation of the in-flight run, if any.
// Workers acknowledge by unwinding and emitting their final Done.
func (c *Coordinator) Stop() {
	if cancel := c.current.Load(); cancel != nil {
		cancel.Stop()
	}
}

// Run executes the full enumeration and blocks until every started worker
// has reported Done, whether the run exhausts the space or is cancelled via
// Stop or ctx. Cancellation is a terminal state, not an error: the returned
// Summary has Cancelled set and holds whatever was produced.
func (c *Coordinator) Run(ctx context.Context) (*Summary, error) {
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer c.running.Store(false)

	start := time.Now()
	cancel := NewCancel()
	c.current.Store(cancel)
	defer c.current.Store(nil)

	w := Workers(c.opts.NumWorkers, c.lattices[0].Len())
	shards := PartitionLattice(c.lattices[0], w)
	events := make(chan Event, w*2)

	pool := NewWorkerPool(w)
	defer pool.Close()

	// Bridge context cancellation onto the polled flag.
	watch := make(chan struct{})
	defer close(watch)
	go func() {
		select {
		case <-ctx.Done():
			cancel.Stop()
		case <-watch:
		}
	}()

	c.logger.Info("run started",
		"workers", w,
		"dimensions", len(c.lattices),
		"total_expected", c.totalExpected,
	)

	started := 0
	for i := 0; i < w; i++ {
		s := NewSearcher(i, c.table, c.lattices, shards[i], cancel, events, c.opts)
		if err := pool.Submit(ctx, s.Run); err != nil {
			cancel.Stop()
			break
		}
		started++
	}

	perWorker := make([]Done, w)
	latestProcessed := make([]uint64, w)
	latestValid := make([]uint64, w)
	results := NewResultSet(len(c.lattices), c.opts.MaxDisplayRows)
	var stored uint64
	doneWorkers := 0
	cancelled := started < w

	// The run is done only when every started worker has reported Done;
	// batches already in flight are drained along the way.
	for doneWorkers < started {
		switch m := (<-events).(type) {
		case Progress:
			// Progress from different workers arrives in arbitrary relative
			// order; per-worker latest values are summed, never overwritten
			// across workers.
			latestProcessed[m.WorkerID] = m.Processed
			latestValid[m.WorkerID] = m.Valid
			c.notifyProgress(latestProcessed, latestValid, stored, doneWorkers, w, false)
		case ResultBatch:
			if c.opts.OnBatch != nil {
				c.opts.OnBatch(m)
			}
			results.Append(m.Rows)
			stored += uint64(m.RowCount)
		case Done:
			perWorker[m.WorkerID] = m
			latestProcessed[m.WorkerID] = m.Processed
			latestValid[m.WorkerID] = m.Valid
			if m.Cancelled {
				cancelled = true
			}
			doneWorkers++
			c.notifyProgress(latestProcessed, latestValid, stored, doneWorkers, w, doneWorkers == started && !cancelled)
		}
	}

	snap := c.snapshot(latestProcessed, latestValid, stored, doneWorkers, w, !cancelled)
	summary := &Summary{
		Snapshot:  snap,
		Cancelled: cancelled,
		Elapsed:   time.Since(start),
		PerWorker: perWorker[:started],
		Results:   results,
	}

	c.logger.Info("run finished",
		"processed", snap.Processed,
		"valid", snap.Valid,
		"stored", snap.Stored,
		"cancelled", cancelled,
		"elapsed", summary.Elapsed,
	)
	return summary, nil
}

func (c *Coordinator) snapshot(processed, valid []uint64, stored uint64, doneWorkers, workers int, final bool) Snapshot {
	var totalProcessed, totalValid uint64
	for _, p := range processed {
		totalProcessed += p
	}
	for _, v := range valid {
		totalValid += v
	}
	percent := 0.0
	if final {
		percent = 100.0
	} else if c.totalExpected > 0 {
		percent = float64(totalProcessed) / float64(c.totalExpected) * 100.0
	}
	return Snapshot{
		Processed:     totalProcessed,
		Valid:         totalValid,
		Stored:        stored,
		TotalExpected: c.totalExpected,
		Percent:       percent,
		WorkersDone:   doneWorkers,
		Workers:       workers,
	}
}

func (c *Coordinator) notifyProgress(processed, valid []uint64, stored uint64, doneWorkers, workers int, final bool) {
	if c.opts.OnProgress == nil {
		return
	}
	c.opts.OnProgress(c.snapshot(processed, valid, stored, doneWorkers, workers, final))
}
