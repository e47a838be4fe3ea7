// Package engine implements the parallel constrained enumeration core:
// a depth-first backtracking searcher per worker, contiguous partitioning of
// the outermost dimension across workers, and a coordinator that merges the
// workers' progress and result-batch messages into run totals and a bounded
// display view.
//
// Workers share nothing mutable: lattices and the compiled constraint table
// are read-only for the run, and every counter a worker maintains is local
// until it is shipped to the coordinator over the event channel. Only the
// coordinator goroutine mutates aggregate state.
package engine
