package datastore

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/seqstore/visit"
)

var (
	// ErrNotYetInitialized is returned by stores that were not created by
	// their constructor (zero values).
	ErrNotYetInitialized = errors.New("datastore: not yet initialized")

	// ErrClosed is returned by every accessor after Close.
	ErrClosed = errors.New("datastore: closed")

	// ErrConcurrentIteration is returned when a streaming store is asked for
	// a second iteration while one is live.
	ErrConcurrentIteration = errors.New("datastore: iteration already in progress")

	// ErrNoDelegates is returned when a composite is built from no stores.
	ErrNoDelegates = errors.New("datastore: composite needs at least one delegate")

	// ErrDuplicateID is returned under RejectDuplicates when an id occurs
	// twice.
	ErrDuplicateID = errors.New("datastore: duplicate record id")

	// ErrInvalidArgument is returned for invalid construction parameters.
	ErrInvalidArgument = errors.New("datastore: invalid argument")

	// ErrParse matches every *ParseError via errors.Is.
	ErrParse = errors.New("datastore: parse failure")
)

// ParseError reports a failure while reading records from a source.
// Offset is -1 when the position is unknown.
type ParseError struct {
	Source string
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("datastore: parse %s at offset %d: %v", e.Source, e.Offset, e.Err)
	}
	return fmt.Sprintf("datastore: parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrParse) true for every ParseError.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

// wrapParse turns a parser failure into a *ParseError. Cancellation,
// lifecycle and policy errors pass through unchanged.
func wrapParse(source string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, ErrClosed), errors.Is(err, ErrDuplicateID), errors.Is(err, ErrParse):
		return err
	}
	var se *visit.SyntaxError
	if errors.As(err, &se) {
		return &ParseError{Source: se.Source, Offset: se.Offset, Err: err}
	}
	return &ParseError{Source: source, Offset: -1, Err: err}
}

func duplicateError(id string) error {
	return fmt.Errorf("%w: %q", ErrDuplicateID, id)
}
