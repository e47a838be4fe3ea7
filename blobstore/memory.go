package blobstore

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store implementation for testing.
// Thread-safe for concurrent reads and writes.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates a new in-memory blob store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

// Open opens a blob for reading.
func (m *MemoryStore) Open(_ context.Context, name string) (Blob, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}

	// Copy so later writes cannot mutate an open reader.
	copied := make([]byte, len(data))
	copy(copied, data)

	return &memoryBlob{Reader: bytes.NewReader(copied), size: int64(len(copied))}, nil
}

// Create creates a new writable blob.
func (m *MemoryStore) Create(_ context.Context, name string) (WritableBlob, error) {
	return &memoryWritableBlob{store: m, name: name}, nil
}

// Put writes a blob atomically.
func (m *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	copied := make([]byte, len(data))
	copy(copied, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = copied
	return nil
}

// Delete removes a blob.
func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, name)
	return nil
}

// List returns all blob names with the given prefix, sorted.
func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name := range m.blobs {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

type memoryBlob struct {
	*bytes.Reader
	size int64
}

func (b *memoryBlob) Close() error { return nil }
func (b *memoryBlob) Size() int64  { return b.size }

type memoryWritableBlob struct {
	store *MemoryStore
	name  string
	buf   bytes.Buffer
}

func (w *memoryWritableBlob) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *memoryWritableBlob) Sync() error { return nil }

func (w *memoryWritableBlob) Close() error {
	return w.store.Put(context.Background(), w.name, w.buf.Bytes())
}

func (w *memoryWritableBlob) Abort() error {
	w.buf.Reset()
	return nil
}
