package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations return an error that satisfies errors.Is(err, ErrNotFound).
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for accessing immutable record files.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// List returns the names of all blobs starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	// ReadAt reads len(p) bytes at offset off with io.ReaderAt semantics.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	// ReadRange returns a reader over length bytes starting at off. Ranges
	// extending past the end are truncated.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)
	// Size returns the size of the blob in bytes.
	Size() int64
	io.Closer
}

// Mappable is an optional interface for Blobs backed by memory.
type Mappable interface {
	// Bytes returns the blob contents. The slice is valid until the Blob is
	// closed.
	Bytes() ([]byte, error)
}

// ReaderAt adapts a Blob to io.ReaderAt, binding every read to ctx.
func ReaderAt(ctx context.Context, b Blob) io.ReaderAt {
	return &ctxReaderAt{ctx: ctx, blob: b}
}

type ctxReaderAt struct {
	ctx  context.Context
	blob Blob
}

func (r *ctxReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return r.blob.ReadAt(r.ctx, p, off)
}

// clampRange bounds [off, off+length) to a blob of the given size.
func clampRange(off, length, size int64) (int64, int64) {
	if off < 0 {
		off = 0
	}
	if off >= size || length <= 0 {
		return off, 0
	}
	if length > size-off {
		length = size - off
	}
	return off, length
}
