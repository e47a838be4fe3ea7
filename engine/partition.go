package engine

import (
	"runtime"

	"github.com/formlab/mixgo/lattice"
)

// Workers returns the effective worker count: the requested parallelism
// (GOMAXPROCS when requested <= 0) clamped to [1, dim0Len]. More workers
// than dimension-0 candidates would only produce empty shards.
func Workers(requested, dim0Len int) int {
	w := requested
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	if dim0Len < 1 {
		return 1
	}
	if w > dim0Len {
		w = dim0Len
	}
	if w < 1 {
		w = 1
	}
	return w
}

// PartitionLattice splits dimension 0's lattice into w contiguous,
// non-overlapping, order-preserving shards of size ceil(len/w). The last
// shard may be shorter or empty. The concatenation of all shards is exactly
// the input lattice, so parallelism changes arrival order only, never the
// result set.
func PartitionLattice(dim0 lattice.Lattice, w int) []lattice.Lattice {
	n := dim0.Len()
	size := (n + w - 1) / w
	shards := make([]lattice.Lattice, w)
	for i := 0; i < w; i++ {
		lo := i * size
		hi := lo + size
		if lo > n {
			lo = n
		}
		if hi > n {
			hi = n
		}
		shards[i] = dim0.Slice(lo, hi)
	}
	return shards
}
