package datastore

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/hupe1980/seqstore/visit"
)

// EagerBuilder is the visitor of an Eager construction pass. Drive it with
// any parser of the same format, then call Build.
type EagerBuilder[T any] struct {
	format visit.Format[T]
	cfg    config

	ids     []string
	records map[string]T
	err     error
	done    bool
	built   bool
}

// NewEagerBuilder creates a builder for format.
func NewEagerBuilder[T any](format visit.Format[T], opts ...Option) (*EagerBuilder[T], error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &EagerBuilder[T]{
		format:  format,
		cfg:     cfg,
		records: make(map[string]T),
	}, nil
}

// VisitRecordStart implements visit.Visitor.
func (b *EagerBuilder[T]) VisitRecordStart(id string, cb visit.Callback) visit.RecordVisitor {
	if !b.cfg.filter.Accept(id) {
		return nil
	}
	if _, dup := b.records[id]; dup {
		switch b.cfg.duplicates {
		case FirstWins:
			return nil
		case RejectDuplicates:
			if b.err == nil {
				b.err = duplicateError(id)
			}
			cb.HaltParsing()
			return nil
		}
	} else {
		b.ids = append(b.ids, id)
	}
	return b.format.NewMaterializer(id, func(rec T) {
		b.records[id] = rec
	})
}

// VisitEnd implements visit.Visitor.
func (b *EagerBuilder[T]) VisitEnd() { b.done = true }

// Halted implements visit.Visitor.
func (b *EagerBuilder[T]) Halted() {}

// Build returns the immutable store. It fails if the pass did not reach
// the end of the source.
func (b *EagerBuilder[T]) Build() (*Eager[T], error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.built {
		return nil, errors.New("datastore: builder already used")
	}
	if !b.done {
		return nil, errors.New("datastore: build before end of source")
	}
	b.built = true
	e := &Eager[T]{
		ids:     b.ids,
		records: b.records,
		logger:  b.cfg.logger,
	}
	e.markReady()
	return e, nil
}

// Eager holds every accepted record in memory. It is safe for concurrent
// use.
type Eager[T any] struct {
	lifecycle

	mu      sync.RWMutex
	ids     []string
	records map[string]T
	logger  *slog.Logger
}

var _ DataStore[int] = (*Eager[int])(nil)

// NewEager materializes every record of the source in one pass. The source
// is closed before NewEager returns.
func NewEager[T any](ctx context.Context, format visit.Format[T], open SourceFunc, opts ...Option) (_ *Eager[T], err error) {
	b, err := NewEagerBuilder(format, opts...)
	if err != nil {
		return nil, err
	}
	start := time.Now()

	src, closer, err := openSource(ctx, open)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := format.NewParser(src).Parse(ctx, b); err != nil {
		return nil, wrapParse(src.Name(), err)
	}
	e, err := b.Build()
	if err != nil {
		return nil, wrapParse(src.Name(), err)
	}
	b.cfg.logger.Debug("built eager store",
		"source", src.Name(),
		"format", format.Name(),
		"records", len(e.ids),
		"elapsed", time.Since(start),
	)
	return e, nil
}

// Get returns the record for id.
func (e *Eager[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.check(); err != nil {
		return zero, false, err
	}
	if err := ctx.Err(); err != nil {
		return zero, false, err
	}
	rec, ok := e.records[id]
	return rec, ok, nil
}

// Contains reports whether id is in the store.
func (e *Eager[T]) Contains(ctx context.Context, id string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.check(); err != nil {
		return false, err
	}
	_, ok := e.records[id]
	return ok, nil
}

// Size returns the number of records.
func (e *Eager[T]) Size(ctx context.Context) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.check(); err != nil {
		return 0, err
	}
	return len(e.ids), nil
}

// IDs yields the ids in first-occurrence order.
func (e *Eager[T]) IDs(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ids, err := e.snapshot()
		if err != nil {
			yield("", err)
			return
		}
		for _, id := range ids {
			if err := e.step(ctx); err != nil {
				yield("", err)
				return
			}
			if !yield(id, nil) {
				return
			}
		}
	}
}

// Values yields the records in id order.
func (e *Eager[T]) Values(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		ids, err := e.snapshot()
		if err != nil {
			yield(zero, err)
			return
		}
		for _, id := range ids {
			if err := e.step(ctx); err != nil {
				yield(zero, err)
				return
			}
			rec, ok, err := e.Get(ctx, id)
			if err != nil {
				yield(zero, err)
				return
			}
			if ok && !yield(rec, nil) {
				return
			}
		}
	}
}

func (e *Eager[T]) snapshot() ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if err := e.check(); err != nil {
		return nil, err
	}
	return e.ids, nil
}

func (e *Eager[T]) step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.check()
}

// Close releases the records. Subsequent calls are no-ops.
func (e *Eager[T]) Close() error {
	if !e.markClosed() {
		return nil
	}
	e.mu.Lock()
	e.records = nil
	e.ids = nil
	e.mu.Unlock()
	if e.logger != nil {
		e.logger.Debug("closed eager store")
	}
	return nil
}
