package mmap

import (
	"errors"
	"strconv"
)

// AccessPattern is a kernel hint for how mapped record data is read.
type AccessPattern int

const (
	// AccessDefault leaves the kernel's read-ahead untouched.
	AccessDefault AccessPattern = iota
	// AccessSequential suits full passes: eager builds and streaming scans.
	AccessSequential
	// AccessRandom suits indexed lookups that touch one record at a time.
	AccessRandom
	// AccessWillNeed asks the kernel to prefetch the range.
	AccessWillNeed
)

func (p AccessPattern) String() string {
	switch p {
	case AccessDefault:
		return "default"
	case AccessSequential:
		return "sequential"
	case AccessRandom:
		return "random"
	case AccessWillNeed:
		return "willneed"
	default:
		return "AccessPattern(" + strconv.Itoa(int(p)) + ")"
	}
}

var (
	// ErrClosed is returned when a closed mapping is accessed.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for files that do not fit the address space.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrOutOfBounds is returned for regions outside the mapping.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
	// ErrInvalidOffset is returned for negative offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)
