package export

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the stream compression applied around the format.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionLZ4
)

// Ext returns the file extension for the compression, without the dot.
// None returns the empty string.
func (c Compression) Ext() string {
	switch c {
	case CompressionGzip:
		return "gz"
	case CompressionLZ4:
		return "lz4"
	default:
		return ""
	}
}

// nopWriteCloser passes writes through; Close is a no-op so the caller's
// writer stays open.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func compressWriter(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{Writer: w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
}

// NewReader wraps r with the decompressor matching c, for reading back
// exported blobs.
func NewReader(r io.Reader, c Compression) (io.Reader, error) {
	switch c {
	case CompressionNone:
		return r, nil
	case CompressionGzip:
		return gzip.NewReader(r)
	case CompressionLZ4:
		return lz4.NewReader(r), nil
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
}
