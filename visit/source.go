package visit

import (
	"errors"
	"fmt"
	"io"
)

// ErrOutOfBounds is returned when a range or offset lies outside the source.
var ErrOutOfBounds = errors.New("visit: out of bounds")

// ByteRange is a contiguous region of a source.
type ByteRange struct {
	Start  int64
	Length int64
}

// End returns the exclusive end offset.
func (r ByteRange) End() int64 { return r.Start + r.Length }

// Check validates r against a source of the given size.
func (r ByteRange) Check(size int64) error {
	if r.Start < 0 || r.Length < 0 || r.End() > size {
		return fmt.Errorf("%w: range [%d,%d) of %d bytes", ErrOutOfBounds, r.Start, r.End(), size)
	}
	return nil
}

// Source is the input of one parse pass.
//
// A seekable source wraps an io.ReaderAt of known size and supports
// mementos. A sequential source wraps a plain io.Reader that can be read
// once from its start.
type Source struct {
	name string
	ra   io.ReaderAt
	size int64
	r    io.Reader
}

// Seekable returns a source that supports random access.
func Seekable(name string, ra io.ReaderAt, size int64) Source {
	return Source{name: name, ra: ra, size: size}
}

// Sequential returns a forward-only source.
func Sequential(name string, r io.Reader) Source {
	return Source{name: name, r: r, size: -1}
}

// Name returns the source name (file or blob name).
func (s Source) Name() string { return s.name }

// IsSeekable reports whether the source supports mementos.
func (s Source) IsSeekable() bool { return s.ra != nil }

// Size returns the source size, or -1 for sequential sources.
func (s Source) Size() int64 { return s.size }

// ReaderFrom returns a reader positioned at off.
// Sequential sources only support off == 0.
func (s Source) ReaderFrom(off int64) (io.Reader, error) {
	if s.ra == nil {
		if off != 0 {
			return nil, ErrMementoUnsupported
		}
		if s.r == nil {
			return nil, fmt.Errorf("visit: source %q has no reader", s.name)
		}
		return s.r, nil
	}
	if off < 0 || off > s.size {
		return nil, fmt.Errorf("%w: offset %d of %d bytes", ErrOutOfBounds, off, s.size)
	}
	return io.NewSectionReader(s.ra, off, s.size-off), nil
}

// Slice returns a seekable source limited to r. Offsets inside the slice are
// relative to r.Start, so mementos from the slice do not fit the parent.
func (s Source) Slice(r ByteRange) (Source, error) {
	if s.ra == nil {
		return Source{}, ErrMementoUnsupported
	}
	if err := r.Check(s.size); err != nil {
		return Source{}, err
	}
	name := fmt.Sprintf("%s[%d:%d]", s.name, r.Start, r.End())
	return Seekable(name, io.NewSectionReader(s.ra, r.Start, r.Length), r.Length), nil
}

// SyntaxError reports malformed input at a byte offset.
type SyntaxError struct {
	Source string
	Offset int64
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error at offset %d: %s", e.Source, e.Offset, e.Msg)
}
