package engine

import (
	"log/slog"

	"golang.org/x/time/rate"
)

// Options configures a run.
type Options struct {
	// NumWorkers is the requested parallelism. The effective worker count is
	// clamped to [1, len(dimension 0 lattice)]. Zero means GOMAXPROCS.
	NumWorkers int

	// BatchSize is the number of accepted rows a worker buffers before
	// shipping a ResultBatch to the coordinator. A partial batch is flushed
	// at end of run.
	BatchSize int

	// ProgressEvery is the number of leaf evaluations between Progress
	// emissions from a worker.
	ProgressEvery uint64

	// MaxStoredPerWorker caps retained rows per worker. Valid rows beyond
	// the cap are counted but not retained. Zero means unlimited.
	MaxStoredPerWorker int

	// MaxDisplayRows caps the bounded interactive view kept by the
	// coordinator. The unbounded export accumulator is unaffected.
	MaxDisplayRows int

	// ProgressLimiter optionally rate-limits Progress emission across all
	// workers, keeping UI event volume bounded on fast searches. Nil means
	// no limit.
	ProgressLimiter *rate.Limiter

	// OnProgress, if set, is invoked by the coordinator goroutine after each
	// merged Progress event.
	OnProgress func(Snapshot)

	// OnBatch, if set, is invoked by the coordinator goroutine for each
	// received ResultBatch before its rows join the accumulators. The
	// callback must not retain Rows.
	OnBatch func(ResultBatch)

	// Logger receives run lifecycle logs. Nil disables logging.
	Logger *slog.Logger
}

// DefaultOptions returns the options applied before user overrides.
func DefaultOptions() Options {
	return Options{
		BatchSize:      200,
		ProgressEvery:  4096,
		MaxDisplayRows: 1000,
	}
}

func applyOptions(optFns []func(*Options)) Options {
	def := DefaultOptions()
	o := def
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.BatchSize <= 0 {
		o.BatchSize = def.BatchSize
	}
	if o.ProgressEvery == 0 {
		o.ProgressEvery = def.ProgressEvery
	}
	return o
}
