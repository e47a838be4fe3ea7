package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// LocalStore implements Store on the local file system. Names may contain
// slashes; intermediate directories are created on write.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Open opens a blob for sequential reading.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	f, err := os.Open(s.path(name))
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &localBlob{f: f, size: info.Size()}, nil
}

// Create creates a blob for streaming writes. The file is written to a
// temporary name and renamed into place on Close, so readers never observe
// a partial blob.
func (s *LocalStore) Create(_ context.Context, name string) (WritableBlob, error) {
	target := s.path(name)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".tmp-*")
	if err != nil {
		return nil, err
	}
	return &localWritableBlob{f: tmp, target: target}, nil
}

// Put writes a blob atomically.
func (s *LocalStore) Put(ctx context.Context, name string, data []byte) error {
	w, err := s.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Abort()
		return err
	}
	return w.Close()
}

// Delete removes a blob. Deleting a missing blob is not an error.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	err := os.Remove(s.path(name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// List returns all blob names with the given prefix, sorted.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

type localBlob struct {
	f    *os.File
	size int64
}

func (b *localBlob) Read(p []byte) (int, error) { return b.f.Read(p) }
func (b *localBlob) Close() error               { return b.f.Close() }
func (b *localBlob) Size() int64                { return b.size }

type localWritableBlob struct {
	f      *os.File
	target string
}

func (w *localWritableBlob) Write(p []byte) (int, error) { return w.f.Write(p) }

func (w *localWritableBlob) Sync() error { return w.f.Sync() }

func (w *localWritableBlob) Close() error {
	if err := w.f.Close(); err != nil {
		os.Remove(w.f.Name())
		return err
	}
	if err := os.Rename(w.f.Name(), w.target); err != nil {
		os.Remove(w.f.Name())
		return fmt.Errorf("rename %s: %w", w.target, err)
	}
	return nil
}

func (w *localWritableBlob) Abort() error {
	err := w.f.Close()
	if rmErr := os.Remove(w.f.Name()); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}
