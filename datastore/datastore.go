package datastore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/hupe1980/seqstore/visit"
)

// DataStore is a keyed, closeable collection of records of type T.
//
// Not-found is reported as (zero, false, nil). Iteration order is the file
// order of each id's first occurrence; composites concatenate their
// delegates in order.
type DataStore[T any] interface {
	Get(ctx context.Context, id string) (T, bool, error)
	Contains(ctx context.Context, id string) (bool, error)
	Size(ctx context.Context) (int, error)
	IDs(ctx context.Context) iter.Seq2[string, error]
	Values(ctx context.Context) iter.Seq2[T, error]
	Close() error
	IsClosed() bool
}

// SourceFunc opens a fresh view of the backing file for one parse pass. The
// returned closer releases that view only; every view of the same file must
// report the same Source name.
type SourceFunc func(ctx context.Context) (visit.Source, io.Closer, error)

// BytesSource serves an in-memory file as a seekable source.
func BytesSource(name string, data []byte) SourceFunc {
	return func(context.Context) (visit.Source, io.Closer, error) {
		return visit.Seekable(name, bytes.NewReader(data), int64(len(data))), io.NopCloser(nil), nil
	}
}

// ProducerLimiter bounds concurrently running streaming producers.
// *resource.Controller satisfies it.
type ProducerLimiter interface {
	AcquireProducer(ctx context.Context) error
	ReleaseProducer()
}

// DuplicatePolicy decides which record an id maps to when it occurs more
// than once. The id always keeps the position of its first occurrence.
type DuplicatePolicy int

const (
	// LastWins maps the id to its last occurrence.
	LastWins DuplicatePolicy = iota
	// FirstWins maps the id to its first occurrence.
	FirstWins
	// RejectDuplicates fails with ErrDuplicateID.
	RejectDuplicates
)

func (p DuplicatePolicy) String() string {
	switch p {
	case LastWins:
		return "last-wins"
	case FirstWins:
		return "first-wins"
	case RejectDuplicates:
		return "reject"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// LookupMode selects how Indexed re-reads a record.
type LookupMode int

const (
	// LookupMemento resumes a fresh parser over the whole source at the
	// record's memento.
	LookupMemento LookupMode = iota
	// LookupRange parses a bounded view holding exactly the record's bytes.
	LookupRange
)

func (m LookupMode) String() string {
	switch m {
	case LookupMemento:
		return "memento"
	case LookupRange:
		return "range"
	default:
		return fmt.Sprintf("LookupMode(%d)", int(m))
	}
}

// DefaultQueueSize is the default capacity of a streaming iteration queue.
const DefaultQueueSize = 64

type config struct {
	filter     Filter
	duplicates DuplicatePolicy
	lookup     LookupMode
	queueSize  int
	logger     *slog.Logger
	limiter    ProducerLimiter
}

func (c config) logDebug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// Option configures a store.
type Option func(*config)

// WithFilter restricts the store to ids accepted by f.
func WithFilter(f Filter) Option {
	return func(c *config) { c.filter = f }
}

// WithDuplicatePolicy sets the duplicate id policy (default LastWins).
func WithDuplicatePolicy(p DuplicatePolicy) Option {
	return func(c *config) { c.duplicates = p }
}

// WithLookupMode sets how Indexed re-reads records (default LookupMemento).
func WithLookupMode(m LookupMode) Option {
	return func(c *config) { c.lookup = m }
}

// WithQueueSize sets the streaming iteration queue capacity.
func WithQueueSize(n int) Option {
	return func(c *config) { c.queueSize = n }
}

// WithLogger sets the logger for build, close and fallback events.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithProducerLimiter bounds streaming producers across stores.
func WithProducerLimiter(l ProducerLimiter) Option {
	return func(c *config) { c.limiter = l }
}

func applyOptions(opts []Option) (config, error) {
	c := config{
		duplicates: LastWins,
		lookup:     LookupMemento,
		queueSize:  DefaultQueueSize,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.queueSize < 1 {
		return c, fmt.Errorf("%w: queue size %d", ErrInvalidArgument, c.queueSize)
	}
	if c.duplicates < LastWins || c.duplicates > RejectDuplicates {
		return c, fmt.Errorf("%w: %s", ErrInvalidArgument, c.duplicates)
	}
	if c.lookup < LookupMemento || c.lookup > LookupRange {
		return c, fmt.Errorf("%w: %s", ErrInvalidArgument, c.lookup)
	}
	return c, nil
}

// openSource opens a view and converts failures.
func openSource(ctx context.Context, open SourceFunc) (visit.Source, io.Closer, error) {
	if open == nil {
		return visit.Source{}, nil, fmt.Errorf("%w: nil source", ErrInvalidArgument)
	}
	src, closer, err := open(ctx)
	if err != nil {
		return visit.Source{}, nil, err
	}
	if closer == nil {
		closer = io.NopCloser(nil)
	}
	return src, closer, nil
}
