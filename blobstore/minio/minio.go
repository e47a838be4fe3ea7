// Package minio implements blobstore.Store on MinIO and other
// S3-compatible object storage.
package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/formlab/mixgo/blobstore"
)

// errAborted fails the upload pipe when a streaming write is abandoned.
var errAborted = errors.New("blob write aborted")

// Store implements blobstore.Store for MinIO.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a new MinIO blob store.
// rootPrefix is prepended to all keys (e.g. "mixgo/").
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound"
}

// Open opens a blob for sequential reading.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)

	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return &minioBlob{obj: obj, size: info.Size}, nil
}

// Create creates a blob for streaming writes.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	pr, pw := io.Pipe()

	blob := &minioWritableBlob{
		pw:   pw,
		done: make(chan error, 1),
	}

	go func() {
		_, err := s.client.PutObject(ctx, s.bucket, s.key(name), pr, -1, minio.PutObjectOptions{})
		_ = pr.CloseWithError(err)
		blob.done <- err
	}()

	return blob, nil
}

// Put writes a blob atomically.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(name),
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	return err
}

// Delete removes a blob. Deleting a missing blob is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{})
	if err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List returns all blob names with the given prefix, sorted.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.key(prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(obj.Key, s.prefix)
		name = strings.TrimPrefix(name, "/")
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

type minioBlob struct {
	obj  *minio.Object
	size int64
}

func (b *minioBlob) Read(p []byte) (int, error) { return b.obj.Read(p) }
func (b *minioBlob) Close() error               { return b.obj.Close() }
func (b *minioBlob) Size() int64                { return b.size }

type minioWritableBlob struct {
	pw   *io.PipeWriter
	done chan error
}

func (w *minioWritableBlob) Write(p []byte) (int, error) { return w.pw.Write(p) }

// Sync is a no-op: durability is established by the upload completing in
// Close.
func (w *minioWritableBlob) Sync() error { return nil }

func (w *minioWritableBlob) Close() error {
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}

// Abort fails the pipe so the background upload errors out instead of
// completing.
func (w *minioWritableBlob) Abort() error {
	w.pw.CloseWithError(errAborted)
	<-w.done
	return nil
}
