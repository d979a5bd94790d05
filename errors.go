package seqstore

import (
	"errors"

	"github.com/hupe1980/seqstore/datastore"
	"github.com/hupe1980/seqstore/visit"
)

// Errors returned by stores opened through this package.
var (
	ErrNotYetInitialized   = datastore.ErrNotYetInitialized
	ErrClosed              = datastore.ErrClosed
	ErrConcurrentIteration = datastore.ErrConcurrentIteration
	ErrNoDelegates         = datastore.ErrNoDelegates
	ErrDuplicateID         = datastore.ErrDuplicateID
	ErrInvalidArgument     = datastore.ErrInvalidArgument
	ErrParse               = datastore.ErrParse

	ErrMementoMisuse      = visit.ErrMementoMisuse
	ErrMementoUnsupported = visit.ErrMementoUnsupported
)

// ErrUnknownProviderHint is returned when a hint name cannot be parsed.
var ErrUnknownProviderHint = errors.New("unknown provider hint")

// ParseError reports a failure while reading records from a source.
type ParseError = datastore.ParseError
