package mixgo

import (
	"context"
	"iter"
	"math"
	"sync/atomic"
	"time"

	"github.com/formlab/mixgo/constraint"
	"github.com/formlab/mixgo/engine"
	"github.com/formlab/mixgo/lattice"
	"github.com/formlab/mixgo/model"
)

// Re-exported request types so callers only import the root package.
type (
	ComponentSpec   = model.ComponentSpec
	GroupConstraint = model.GroupConstraint
	SearchRequest   = model.SearchRequest
)

// DefaultEpsilon is the tolerance applied when a request does not set one.
const DefaultEpsilon = model.DefaultEpsilon

// ErrRunInProgress is returned by Run and Stream when the runner already
// has an active run.
var ErrRunInProgress = engine.ErrRunInProgress

// Float64 returns a pointer to v, for optional request fields.
func Float64(v float64) *float64 { return &v }

// Uint32 returns a pointer to v, for optional request fields.
func Uint32(v uint32) *uint32 { return &v }

// Result is the terminal state of one enumeration run.
type Result struct {
	// Names are the component names in column order.
	Names []string

	// Processed counts candidate tuples evaluated (pruned subtrees are not
	// counted). Valid counts tuples that satisfied every constraint. Stored
	// counts rows retained in Rows.
	Processed uint64
	Valid     uint64
	Stored    uint64

	// TotalExpected is the unpruned leaf count of the search space.
	TotalExpected uint64

	// Cancelled reports whether the run was stopped before exhausting the
	// space. A cancelled run still carries everything produced so far.
	Cancelled bool

	Elapsed time.Duration

	// Rows holds the retained valid tuples.
	Rows *engine.ResultSet

	// PerWorker holds the final report of every worker that started.
	PerWorker []engine.Done
}

// Runner executes enumeration runs for one validated request. A runner may
// be reused for sequential runs; concurrent runs are rejected.
type Runner struct {
	req      model.SearchRequest
	table    *constraint.Table
	lattices []lattice.Lattice
	opts     Options

	totalExpected uint64
	running       atomic.Bool
	current       atomic.Pointer[engine.Coordinator]
}

// New validates the request, discretizes every component and compiles the
// constraint table. The returned runner is ready for Run or Stream.
func New(req SearchRequest, optFns ...Option) (*Runner, error) {
	opts := applyOptions(optFns...)

	if err := Validate(req); err != nil {
		opts.Logger.LogValidation(context.Background(), err)
		return nil, err
	}

	lattices, err := lattice.BuildAll(req.Components)
	if err != nil {
		return nil, err
	}
	table, err := constraint.Compile(req.Components, req.Groups, req.MinTotal, req.MaxTotal, req.EffectiveEpsilon())
	if err != nil {
		return nil, err
	}

	return &Runner{
		req:           req,
		table:         table,
		lattices:      lattices,
		opts:          opts,
		totalExpected: lattice.TotalLeaves(lattices),
	}, nil
}

// Validate checks a request without building anything. New calls it; use it
// directly to surface form errors before a run is attempted.
func Validate(req SearchRequest) error {
	if len(req.Components) == 0 {
		return ErrNoComponents
	}

	seen := make(map[string]struct{}, len(req.Components))
	for _, c := range req.Components {
		if _, ok := seen[c.Name]; ok {
			return &ErrDuplicateComponent{Component: c.Name}
		}
		seen[c.Name] = struct{}{}

		if c.IsFixed() {
			if !isFinite(*c.Fixed) || *c.Fixed < 0 {
				return &ErrInvalidComponent{Component: c.Name, Field: "fixed", Value: *c.Fixed}
			}
			continue
		}
		if !isFinite(c.Min) || c.Min < 0 {
			// Partial-sum pruning assumes every candidate value is
			// non-negative.
			return &ErrInvalidComponent{Component: c.Name, Field: "min", Value: c.Min}
		}
		if !isFinite(c.Max) {
			return &ErrInvalidComponent{Component: c.Name, Field: "max", Value: c.Max}
		}
		if !isFinite(c.Step) || c.Step <= 0 {
			return &ErrInvalidComponent{
				Component: c.Name,
				Field:     "step",
				Value:     c.Step,
				cause:     &lattice.ErrNonPositiveStep{Component: c.Name, Step: c.Step},
			}
		}
	}

	if !isFinite(req.MinTotal) || !isFinite(req.MaxTotal) || req.MinTotal > req.MaxTotal {
		return &ErrInvalidTotalBounds{MinTotal: req.MinTotal, MaxTotal: req.MaxTotal}
	}
	if math.IsNaN(req.Epsilon) || math.IsInf(req.Epsilon, 0) || req.Epsilon < 0 {
		return &ErrInvalidEpsilon{Epsilon: req.Epsilon}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Request returns the validated request the runner was built from.
func (r *Runner) Request() SearchRequest { return r.req }

// TotalExpected returns the unpruned leaf count of the search space.
func (r *Runner) TotalExpected() uint64 { return r.totalExpected }

// Stop requests cooperative cancellation of the in-flight run, if any.
func (r *Runner) Stop() {
	if coord := r.current.Load(); coord != nil {
		coord.Stop()
	}
}

// Run executes the full enumeration and blocks until every worker finished.
// Cancellation (Stop or ctx) is not an error: the Result has Cancelled set
// and holds whatever was produced before the stop took effect.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	return r.run(ctx, nil)
}

// Stream runs the enumeration and yields valid tuples as workers deliver
// them. Row slices are owned by the consumer. Breaking out of the loop
// cancels the run. A terminal error, if any, is yielded once with a nil row.
func (r *Runner) Stream(ctx context.Context) iter.Seq2[[]float64, error] {
	return func(yield func([]float64, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		rowLen := len(r.lattices)
		rows := make(chan []float64, 256)
		errCh := make(chan error, 1)

		go func() {
			defer close(rows)
			_, err := r.run(ctx, func(b engine.ResultBatch) {
				for i := 0; i < b.RowCount; i++ {
					row := make([]float64, rowLen)
					copy(row, b.Rows[i*rowLen:(i+1)*rowLen])
					select {
					case rows <- row:
					case <-ctx.Done():
						return
					}
				}
			})
			errCh <- err
		}()

		for row := range rows {
			if !yield(row, nil) {
				cancel()
				for range rows {
				}
				<-errCh
				return
			}
		}
		if err := <-errCh; err != nil {
			yield(nil, err)
		}
	}
}

func (r *Runner) run(ctx context.Context, onBatch func(engine.ResultBatch)) (*Result, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer r.running.Store(false)

	if ctrl := r.opts.Controller; ctrl != nil {
		if err := ctrl.AcquireRun(ctx); err != nil {
			return nil, err
		}
		defer ctrl.ReleaseRun()
	}

	coord := engine.NewCoordinator(r.table, r.lattices, r.engineOptions(onBatch))
	r.current.Store(coord)
	defer r.current.Store(nil)

	summary, err := coord.Run(ctx)
	if err != nil {
		return nil, err
	}

	r.opts.Metrics.RecordRun(summary.Elapsed, summary.Processed, summary.Valid, summary.Cancelled)
	r.opts.Logger.LogRun(ctx, summary.Processed, summary.Valid, summary.Stored, summary.Cancelled, summary.Elapsed)

	return &Result{
		Names:         r.req.ComponentNames(),
		Processed:     summary.Processed,
		Valid:         summary.Valid,
		Stored:        summary.Stored,
		TotalExpected: summary.TotalExpected,
		Cancelled:     summary.Cancelled,
		Elapsed:       summary.Elapsed,
		Rows:          summary.Results,
		PerWorker:     summary.PerWorker,
	}, nil
}

func (r *Runner) engineOptions(onBatch func(engine.ResultBatch)) func(*engine.Options) {
	maxStored := r.opts.MaxStoredPerWorker
	if r.req.MaxStoredResults > 0 {
		maxStored = r.req.MaxStoredResults
	}
	metrics := r.opts.Metrics

	return func(o *engine.Options) {
		o.NumWorkers = r.opts.NumWorkers
		o.BatchSize = r.opts.BatchSize
		o.ProgressEvery = r.opts.ProgressEvery
		o.MaxStoredPerWorker = maxStored
		o.MaxDisplayRows = r.opts.MaxDisplayRows
		o.OnProgress = r.opts.OnProgress
		o.Logger = r.opts.Logger.Logger
		if ctrl := r.opts.Controller; ctrl != nil {
			o.ProgressLimiter = ctrl.ProgressLimiter()
		}
		o.OnBatch = func(b engine.ResultBatch) {
			metrics.RecordBatch(b.RowCount)
			if onBatch != nil {
				onBatch(b)
			}
		}
	}
}
