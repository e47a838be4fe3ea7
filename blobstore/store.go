package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// errors.Is(err, ErrNotFound). The default maps to os.ErrNotExist.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for reading and writing named blobs.
type Store interface {
	// Open opens a blob for sequential reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create creates a blob for streaming writes. The blob becomes
	// visible under its name when Close returns nil.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns all blob names with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a blob.
type Blob interface {
	io.Reader
	io.Closer

	// Size returns the size of the blob in bytes.
	Size() int64
}

// WritableBlob is a streaming write handle. Data is not guaranteed to be
// visible to readers until Close returns nil.
type WritableBlob interface {
	io.Writer
	io.Closer

	// Sync flushes written data to the underlying medium where supported.
	Sync() error

	// Abort discards everything written and releases the handle. The blob
	// never becomes visible under its name; a previous blob with the same
	// name is kept. Close must not be called after Abort.
	Abort() error
}

// ReadAll opens a blob and reads it fully.
func ReadAll(ctx context.Context, store Store, name string) ([]byte, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	return io.ReadAll(blob)
}
