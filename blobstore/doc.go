// Package blobstore provides storage abstraction for exported results and
// saved setups.
//
// Store is the interface for reading and writing named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with atomic Put
//   - MemoryStore: in-memory store for tests
//   - s3.Store: Amazon S3 with streaming multipart uploads
//   - minio.Store: MinIO and other S3-compatible object storage
//
// Exports and setups are written and read front to back, so blobs expose
// sequential readers rather than random access.
package blobstore
