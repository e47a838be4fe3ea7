package mixgo

import (
	"github.com/formlab/mixgo/codec"
	"github.com/formlab/mixgo/engine"
	"github.com/formlab/mixgo/resource"
)

// Progress is a merged progress snapshot across all workers.
type Progress = engine.Snapshot

// Options contains configuration for a Runner.
type Options struct {
	// NumWorkers sets the number of search workers. Zero or negative
	// means runtime.GOMAXPROCS(0); the count is always clamped to the
	// size of the first dimension.
	NumWorkers int

	// BatchSize is the number of valid rows a worker accumulates before
	// flushing a result batch to the aggregator.
	BatchSize int

	// ProgressEvery is the candidate interval at which workers consider
	// emitting a progress event.
	ProgressEvery uint64

	// MaxStoredPerWorker caps how many valid rows each worker retains.
	// Zero means unlimited. Rows beyond the cap are still counted.
	// When the request sets MaxStoredResults, that value wins.
	MaxStoredPerWorker int

	// MaxDisplayRows caps the rows returned by Result display accessors.
	// Zero means unlimited.
	MaxDisplayRows int

	// OnProgress, if set, receives merged progress snapshots.
	OnProgress func(Progress)

	// Logger receives structured run logs. Defaults to a noop logger.
	Logger *Logger

	// Metrics collects run and batch metrics. Defaults to NoopMetrics.
	Metrics MetricsCollector

	// Codec serializes setups saved with Runner.SaveSetup and JSON exports
	// written with Runner.Export. Defaults to codec.Default.
	Codec codec.Codec

	// Controller applies run admission and progress throttling.
	// Nil disables resource control.
	Controller *resource.Controller
}

// Option configures a Runner.
type Option func(*Options)

// DefaultOptions returns the default Runner configuration.
func DefaultOptions() Options {
	return Options{
		BatchSize:      200,
		ProgressEvery:  4096,
		MaxDisplayRows: 1000,
		Logger:         NoopLogger(),
		Metrics:        NewNoopMetrics(),
		Codec:          codec.Default,
	}
}

// WithNumWorkers sets the number of search workers.
func WithNumWorkers(n int) Option {
	return func(o *Options) { o.NumWorkers = n }
}

// WithBatchSize sets the worker result batch size.
func WithBatchSize(n int) Option {
	return func(o *Options) { o.BatchSize = n }
}

// WithProgressEvery sets the candidate interval for progress events.
func WithProgressEvery(n uint64) Option {
	return func(o *Options) { o.ProgressEvery = n }
}

// WithMaxStoredPerWorker caps retained rows per worker.
func WithMaxStoredPerWorker(n int) Option {
	return func(o *Options) { o.MaxStoredPerWorker = n }
}

// WithMaxDisplayRows caps the rows returned by display accessors.
func WithMaxDisplayRows(n int) Option {
	return func(o *Options) { o.MaxDisplayRows = n }
}

// WithProgressHandler installs a handler for merged progress snapshots.
func WithProgressHandler(fn func(Progress)) Option {
	return func(o *Options) { o.OnProgress = fn }
}

// WithLogger sets the logger.
func WithLogger(l *Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *Options) {
		if m != nil {
			o.Metrics = m
		}
	}
}

// WithCodec sets the persistence codec.
func WithCodec(c codec.Codec) Option {
	return func(o *Options) {
		if c != nil {
			o.Codec = c
		}
	}
}

// WithResourceController sets the resource controller.
func WithResourceController(c *resource.Controller) Option {
	return func(o *Options) { o.Controller = c }
}

func applyOptions(optFns ...Option) Options {
	opts := DefaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}
