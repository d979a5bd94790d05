// Package blobstore provides the backing sources record files are read from.
//
// A BlobStore opens immutable, named blobs. Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local file system, memory-mapped by default
//   - MemoryStore: in-memory blobs, mostly for tests
//   - CachingStore: block cache in front of another store (remote backends)
//   - s3.Store: Amazon S3 with ranged GETs
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    List(ctx, prefix) ([]string, error)
//	}
//
//	type Blob interface {
//	    ReadAt(ctx, p, off) (int, error)
//	    ReadRange(ctx, off, len) (io.ReadCloser, error)
//	    Size() int64
//	    Close() error
//	}
//
// ReadRange is used for whole-file sequential passes and should stream;
// ReadAt serves random access and may be backed by a cache.
package blobstore
