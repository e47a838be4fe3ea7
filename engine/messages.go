package engine

// Event is a message from a worker to the coordinator.
type Event interface{ event() }

// Progress reports a worker's cumulative counters. Processed and Valid are
// monotonically non-decreasing across successive Progress events from the
// same worker.
type Progress struct {
	WorkerID  int
	Processed uint64
	Valid     uint64
}

func (Progress) event() {}

// ResultBatch carries accepted rows as a flat numeric buffer of
// RowCount*rowLen values in search order. Ownership of Rows moves to the
// receiver on send; the worker allocates a fresh buffer for the next batch.
type ResultBatch struct {
	WorkerID int
	Rows     []float64
	RowCount int
}

func (ResultBatch) event() {}

// Done is the terminal per-worker message with final counters. Cancelled
// distinguishes a cooperative stop from natural exhaustion of the shard.
type Done struct {
	WorkerID  int
	Processed uint64
	Valid     uint64
	Stored    uint64
	Cancelled bool
}

func (Done) event() {}
