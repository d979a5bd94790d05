package resource

import (
	"context"
	"io"
)

// RateLimitedReader throttles reads through the controller's IO budget.
type RateLimitedReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewRateLimitedReader wraps r. With a nil controller or no IO limit the
// reader passes through unthrottled.
func NewRateLimitedReader(ctx context.Context, r io.Reader, rc *Controller) io.Reader {
	if rc == nil || rc.ioLimiter == nil {
		return r
	}
	return &RateLimitedReader{ctx: ctx, r: r, rc: rc}
}

func (r *RateLimitedReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		if werr := r.rc.AcquireIO(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

// RateLimitedReaderAt throttles positional reads through the controller's
// IO budget.
type RateLimitedReaderAt struct {
	ctx context.Context
	r   io.ReaderAt
	rc  *Controller
}

// NewRateLimitedReaderAt wraps r like NewRateLimitedReader.
func NewRateLimitedReaderAt(ctx context.Context, r io.ReaderAt, rc *Controller) io.ReaderAt {
	if rc == nil || rc.ioLimiter == nil {
		return r
	}
	return &RateLimitedReaderAt{ctx: ctx, r: r, rc: rc}
}

func (r *RateLimitedReaderAt) ReadAt(p []byte, off int64) (int, error) {
	n, err := r.r.ReadAt(p, off)
	if n > 0 {
		if werr := r.rc.AcquireIO(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}
