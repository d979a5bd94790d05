package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type blob struct {
	store *Store
	key   string
	size  int64
	etag  string
}

func (b *blob) Close() error { return nil }

func (b *blob) Size() int64 { return b.size }

func (b *blob) getInput(rangeHeader string) *s3.GetObjectInput {
	in := &s3.GetObjectInput{
		Bucket: aws.String(b.store.bucket),
		Key:    aws.String(b.key),
	}
	if rangeHeader != "" {
		in.Range = aws.String(rangeHeader)
	}
	if b.etag != "" {
		// fail instead of mixing bytes of two object versions
		in.IfMatch = aws.String(b.etag)
	}
	return in
}

// ReadAt reads len(p) bytes starting at offset off with one ranged GET.
func (b *blob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off >= b.size {
		return 0, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	end := min(off+int64(len(p)), b.size) - 1

	resp, err := b.store.client.GetObject(ctx, b.getInput(fmt.Sprintf("bytes=%d-%d", off, end)))
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	want := int(end - off + 1)
	n, err := io.ReadFull(resp.Body, p[:want])
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return n, io.ErrUnexpectedEOF
		}
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// ReadRange streams a byte range. Whole-object reads up to the download
// threshold go through the parallel downloader.
func (b *blob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if off >= b.size || length <= 0 {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	end := min(off+length, b.size) - 1

	if off == 0 && end == b.size-1 && b.size <= b.store.opts.downloadThreshold {
		return b.download(ctx)
	}

	resp, err := b.store.client.GetObject(ctx, b.getInput(fmt.Sprintf("bytes=%d-%d", off, end)))
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (b *blob) download(ctx context.Context) (io.ReadCloser, error) {
	buf := manager.NewWriteAtBuffer(make([]byte, 0, b.size))
	n, err := b.store.downloader.Download(ctx, buf, b.getInput(""))
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(buf.Bytes()[:n])), nil
}
