// Package s3 implements blobstore.Store on Amazon S3.
//
// Writes stream through a pipe into a multipart upload, so large exports
// never buffer fully in memory.
package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/formlab/mixgo/blobstore"
)

// errAborted fails the upload pipe when a streaming write is abandoned.
var errAborted = errors.New("blob write aborted")

// Store implements blobstore.Store for S3.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewStore creates a new S3 blob store.
// rootPrefix is prepended to all keys (e.g. "mixgo/").
func NewStore(client *s3.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

// NewDefaultStore creates a Store using the default AWS credential chain.
func NewDefaultStore(ctx context.Context, bucket, rootPrefix string) (*Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewStore(s3.NewFromConfig(cfg), bucket, rootPrefix), nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Open opens a blob for sequential reading.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}

	size := int64(-1)
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	return &s3Blob{body: out.Body, size: size}, nil
}

// Create creates a blob for streaming writes via multipart upload.
func (s *Store) Create(ctx context.Context, name string) (blobstore.WritableBlob, error) {
	pr, pw := io.Pipe()

	blob := &s3WritableBlob{
		pw:   pw,
		done: make(chan error, 1),
	}

	uploader := manager.NewUploader(s.client)
	go func() {
		_, err := uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key(name)),
			Body:   pr,
		})
		_ = pr.CloseWithError(err)
		blob.done <- err
	}()

	return blob, nil
}

// Put writes a blob atomically.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   bytes.NewReader(data),
	})
	return err
}

// Delete removes a blob. S3 deletes are idempotent.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	return err
}

// List returns all blob names with the given prefix, sorted.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(prefix)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			name = strings.TrimPrefix(name, "/")
			if name != "" {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

type s3Blob struct {
	body io.ReadCloser
	size int64
}

func (b *s3Blob) Read(p []byte) (int, error) { return b.body.Read(p) }
func (b *s3Blob) Close() error               { return b.body.Close() }
func (b *s3Blob) Size() int64                { return b.size }

type s3WritableBlob struct {
	pw   *io.PipeWriter
	done chan error
}

func (w *s3WritableBlob) Write(p []byte) (int, error) { return w.pw.Write(p) }

// Sync is a no-op: durability is established by the upload completing in
// Close.
func (w *s3WritableBlob) Sync() error { return nil }

func (w *s3WritableBlob) Close() error {
	if err := w.pw.Close(); err != nil {
		return err
	}
	return <-w.done
}

// Abort fails the pipe so the background upload errors out instead of
// completing; S3 never materializes an aborted multipart upload.
func (w *s3WritableBlob) Abort() error {
	w.pw.CloseWithError(errAborted)
	<-w.done
	return nil
}
