package mixgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines the interface for collecting search metrics.
// Implementations must be safe for concurrent use.
type MetricsCollector interface {
	// RecordRun records a completed (or cancelled) enumeration run.
	RecordRun(elapsed time.Duration, processed, valid uint64, cancelled bool)

	// RecordBatch records a result batch handed to the aggregator.
	RecordBatch(rows int)

	// RecordExport records a result export operation.
	RecordExport(elapsed time.Duration, rows int, err error)
}

// NoopMetrics is a no-op implementation of MetricsCollector.
type NoopMetrics struct{}

// NewNoopMetrics creates a new NoopMetrics collector.
func NewNoopMetrics() *NoopMetrics { return &NoopMetrics{} }

func (m *NoopMetrics) RecordRun(time.Duration, uint64, uint64, bool) {}
func (m *NoopMetrics) RecordBatch(int)                               {}
func (m *NoopMetrics) RecordExport(time.Duration, int, error)        {}

// BasicMetrics is a simple in-memory metrics collector using atomic counters.
type BasicMetrics struct {
	runs          atomic.Int64
	cancelledRuns atomic.Int64
	runNanos      atomic.Int64
	processed     atomic.Uint64
	valid         atomic.Uint64
	batches       atomic.Int64
	batchRows     atomic.Int64
	exports       atomic.Int64
	exportErrors  atomic.Int64
}

// NewBasicMetrics creates a new BasicMetrics collector.
func NewBasicMetrics() *BasicMetrics { return &BasicMetrics{} }

func (m *BasicMetrics) RecordRun(elapsed time.Duration, processed, valid uint64, cancelled bool) {
	m.runs.Add(1)
	if cancelled {
		m.cancelledRuns.Add(1)
	}
	m.runNanos.Add(int64(elapsed))
	m.processed.Add(processed)
	m.valid.Add(valid)
}

func (m *BasicMetrics) RecordBatch(rows int) {
	m.batches.Add(1)
	m.batchRows.Add(int64(rows))
}

func (m *BasicMetrics) RecordExport(_ time.Duration, _ int, err error) {
	m.exports.Add(1)
	if err != nil {
		m.exportErrors.Add(1)
	}
}

// Stats returns a snapshot of the collected metrics.
func (m *BasicMetrics) Stats() MetricsStats {
	return MetricsStats{
		Runs:          m.runs.Load(),
		CancelledRuns: m.cancelledRuns.Load(),
		RunTime:       time.Duration(m.runNanos.Load()),
		Processed:     m.processed.Load(),
		Valid:         m.valid.Load(),
		Batches:       m.batches.Load(),
		BatchRows:     m.batchRows.Load(),
		Exports:       m.exports.Load(),
		ExportErrors:  m.exportErrors.Load(),
	}
}

// MetricsStats holds a point-in-time view of BasicMetrics counters.
type MetricsStats struct {
	Runs          int64
	CancelledRuns int64
	RunTime       time.Duration
	Processed     uint64
	Valid         uint64
	Batches       int64
	BatchRows     int64
	Exports       int64
	ExportErrors  int64
}
