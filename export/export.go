// Package export serializes result sets to CSV or JSON, optionally
// compressed, to any io.Writer or blobstore.Store.
//
// Values are formatted with the same decimal rounding the search applies,
// so an exported file re-parses to exactly the values the run produced.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"iter"

	"github.com/formlab/mixgo/codec"
	"github.com/formlab/mixgo/internal/fixed"
)

// Format selects the serialization format.
type Format int

const (
	FormatCSV Format = iota
	FormatJSON
)

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	switch f {
	case FormatJSON:
		return "json"
	default:
		return "csv"
	}
}

// Options configures one export.
type Options struct {
	Format      Format
	Compression Compression

	// Codec serializes JSON exports. Nil means codec.Default.
	Codec codec.Codec
}

// Ext returns the full file extension including compression suffix,
// e.g. "csv.gz" or "json".
func (o Options) Ext() string {
	if s := o.Compression.Ext(); s != "" {
		return o.Format.Ext() + "." + s
	}
	return o.Format.Ext()
}

// Write serializes the rows to w and returns the number of rows written.
func Write(w io.Writer, opts Options, names []string, rows iter.Seq[[]float64]) (int, error) {
	cw, err := compressWriter(w, opts.Compression)
	if err != nil {
		return 0, err
	}

	var n int
	switch opts.Format {
	case FormatJSON:
		n, err = writeJSON(cw, opts.Codec, names, rows)
	default:
		n, err = writeCSV(cw, names, rows)
	}
	if err != nil {
		cw.Close()
		return n, err
	}
	return n, cw.Close()
}

// writeCSV emits a header of component names followed by one record per row.
func writeCSV(w io.Writer, names []string, rows iter.Seq[[]float64]) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(names); err != nil {
		return 0, err
	}

	record := make([]string, len(names))
	n := 0
	for row := range rows {
		if len(row) != len(names) {
			return n, fmt.Errorf("row %d has %d columns, header has %d", n, len(row), len(names))
		}
		for i, v := range row {
			record[i] = fixed.FormatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return n, err
		}
		n++
	}
	cw.Flush()
	return n, cw.Error()
}

// document is the JSON export shape.
type document struct {
	Names []string    `json:"names"`
	Rows  [][]float64 `json:"rows"`
}

func writeJSON(w io.Writer, c codec.Codec, names []string, rows iter.Seq[[]float64]) (int, error) {
	if c == nil {
		c = codec.Default
	}

	doc := document{Names: names}
	for row := range rows {
		doc.Rows = append(doc.Rows, append([]float64(nil), row...))
	}

	data, err := c.Marshal(doc)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(data); err != nil {
		return 0, err
	}
	return len(doc.Rows), nil
}
