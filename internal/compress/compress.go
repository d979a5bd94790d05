// Package compress detects and unwraps compressed record files.
//
// Compressed inputs are read as sequential streams: they cannot be resumed
// at a byte offset, so stores built on them never hand out mementos.
package compress

import (
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Kind is a compression container format.
type Kind uint8

const (
	// None is an uncompressed file.
	None Kind = iota
	// Gzip is a .gz file (also .bgz / BGZF, which is valid multi-member gzip).
	Gzip
	// Zstd is a .zst file.
	Zstd
	// LZ4 is a .lz4 frame file.
	LZ4
	// Brotli is a .br file.
	Brotli
)

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	case Brotli:
		return "brotli"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Detect returns the compression kind implied by the file name.
func Detect(name string) Kind {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".gz"), strings.HasSuffix(lower, ".bgz"):
		return Gzip
	case strings.HasSuffix(lower, ".zst"), strings.HasSuffix(lower, ".zstd"):
		return Zstd
	case strings.HasSuffix(lower, ".lz4"):
		return LZ4
	case strings.HasSuffix(lower, ".br"):
		return Brotli
	default:
		return None
	}
}

// NewReader wraps r with a decompressor for k. For None it returns r as is.
// Closing the returned reader does not close r.
func NewReader(k Kind, r io.Reader) (io.ReadCloser, error) {
	switch k {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("compress: gzip header: %w", err)
		}
		return zr, nil
	case Zstd:
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("compress: zstd: %w", err)
		}
		return dec.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case Brotli:
		return io.NopCloser(brotli.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("compress: unsupported kind %s", k)
	}
}

// NewWriter wraps w with a compressor for k. Close flushes the compressor but
// does not close w.
func NewWriter(k Kind, w io.Writer) (io.WriteCloser, error) {
	switch k {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("compress: zstd: %w", err)
		}
		return enc, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case Brotli:
		return brotli.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("compress: unsupported kind %s", k)
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
