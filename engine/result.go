package engine

import "iter"

// ResultSet accumulates accepted rows in arrival order (worker-major: rows
// from one worker keep their lexicographic order, batches from different
// workers interleave as they arrive).
//
// It keeps the full unbounded accumulator for export plus a capped view for
// interactive display, flagging truncation once the cap is exceeded.
type ResultSet struct {
	rowLen     int
	rows       []float64
	displayCap int
	truncated  bool
}

// NewResultSet creates an empty result set for rows of rowLen values.
// displayCap <= 0 disables the bounded view cap.
func NewResultSet(rowLen, displayCap int) *ResultSet {
	return &ResultSet{rowLen: rowLen, displayCap: displayCap}
}

// Append takes ownership of a flat batch buffer of whole rows.
func (rs *ResultSet) Append(rows []float64) {
	rs.rows = append(rs.rows, rows...)
	if rs.displayCap > 0 && rs.Len() > rs.displayCap {
		rs.truncated = true
	}
}

// Len returns the number of stored rows.
func (rs *ResultSet) Len() int {
	if rs.rowLen == 0 {
		return 0
	}
	return len(rs.rows) / rs.rowLen
}

// RowLen returns the number of values per row.
func (rs *ResultSet) RowLen() int { return rs.rowLen }

// Row returns the i-th stored row. The returned slice aliases the internal
// buffer and must not be mutated.
func (rs *ResultSet) Row(i int) []float64 {
	return rs.rows[i*rs.rowLen : (i+1)*rs.rowLen]
}

// DisplayRows returns the bounded interactive view: the first
// min(Len, displayCap) rows.
func (rs *ResultSet) DisplayRows() [][]float64 {
	n := rs.Len()
	if rs.displayCap > 0 && n > rs.displayCap {
		n = rs.displayCap
	}
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = rs.Row(i)
	}
	return out
}

// Truncated reports whether the display view dropped rows.
func (rs *ResultSet) Truncated() bool { return rs.truncated }

// All iterates every stored row in arrival order, for unbounded export.
func (rs *ResultSet) All() iter.Seq[[]float64] {
	return func(yield func([]float64) bool) {
		for i := 0; i < rs.Len(); i++ {
			if !yield(rs.Row(i)) {
				return
			}
		}
	}
}
