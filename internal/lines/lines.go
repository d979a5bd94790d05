// Package lines provides an offset-tracking line reader for line-oriented
// record formats.
package lines

import (
	"bufio"
	"bytes"
	"io"
)

const defaultBufferSize = 64 * 1024

// Reader reads newline-terminated lines and reports the byte offset at which
// each line starts. Offsets are absolute: they include the base offset the
// reader was created with.
type Reader struct {
	br  *bufio.Reader
	off int64

	// one line of push-back
	last     []byte
	lastOff  int64
	unread   bool
	haveLast bool
}

// NewReader returns a Reader over r whose first byte is at offset base.
func NewReader(r io.Reader, base int64) *Reader {
	return &Reader{
		br:  bufio.NewReaderSize(r, defaultBufferSize),
		off: base,
	}
}

// Next returns the next line without its line terminator ("\n" or "\r\n")
// and the offset of its first byte. It returns io.EOF once the input is
// exhausted. The returned slice stays valid until the next call.
func (r *Reader) Next() ([]byte, int64, error) {
	if r.unread {
		r.unread = false
		return r.last, r.lastOff, nil
	}
	line, err := r.br.ReadBytes('\n')
	if len(line) == 0 && err != nil {
		return nil, r.off, err
	}
	start := r.off
	r.off += int64(len(line))
	line = bytes.TrimSuffix(line, []byte{'\n'})
	line = bytes.TrimSuffix(line, []byte{'\r'})
	r.last, r.lastOff, r.haveLast = line, start, true
	if err != nil && err != io.EOF {
		return nil, start, err
	}
	return line, start, nil
}

// Unread pushes the last line returned by Next back, so the next call
// returns it again. Only one line of push-back is supported.
func (r *Reader) Unread() {
	if r.haveLast {
		r.unread = true
	}
}

// Offset returns the offset of the next unread byte.
func (r *Reader) Offset() int64 {
	if r.unread {
		return r.lastOff
	}
	return r.off
}
