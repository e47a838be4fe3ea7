// Package mixgo provides an embeddable constrained enumeration engine for
// formulation spaces: mixtures of named components whose values are drawn
// from discretized ranges and whose sum must land inside global bounds.
//
// Features:
//
//   - Decimal-lattice discretization with exact step arithmetic (no float
//     accumulation drift across a range)
//   - Depth-first enumeration with partial-sum, group-mass and group-count
//     pruning
//   - Parallel search: dimension 0 is sliced into contiguous shards, one
//     share-nothing worker per shard, results merged by a single coordinator
//   - Deterministic results: the merged result set is independent of the
//     worker count
//   - Cooperative cancellation via Stop or context, returning everything
//     produced so far
//   - Streaming consumption via iter.Seq2
//   - Result export to CSV and JSON, optionally gzip- or lz4-compressed,
//     to local files, memory, S3 or MinIO
//
// # Quick Start
//
//	runner, err := mixgo.Request().
//	    Component("water", "solvent", 0.4, 0.8, 0.01).
//	    Component("glycerin", "humectant", 0, 0.3, 0.01).
//	    Component("xanthan", "thickener", 0, 0.05, 0.005).
//	    GroupMaxMass("humectant", 0.35).
//	    Total(0.99, 1.01).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := runner.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("valid formulations: %d\n", result.Valid)
//
// # Concurrency
//
// A Runner executes one run at a time; concurrent Run or Stream calls return
// ErrRunInProgress. Within a run, workers share nothing and the coordinator
// goroutine is the only mutator of aggregate state, so progress snapshots
// and result batches need no locking on the consumer side.
package mixgo
