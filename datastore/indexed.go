package datastore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/hupe1980/seqstore/visit"
)

const (
	// valuesBatch bounds the records materialized per resumed parse in
	// Values.
	valuesBatch = 256
	// maxSkipped bounds the records skipped inside one resumed parse
	// before Values prefers a fresh memento.
	maxSkipped = 1024
)

// Indexed keeps an id index in memory and re-parses single records on
// demand. It is safe for concurrent use; every lookup runs a fresh parser
// over a fresh view of the source.
type Indexed[T any] struct {
	lifecycle

	mu      sync.RWMutex
	format  visit.Format[T]
	open    SourceFunc
	release io.Closer
	idx     *index
	lookup  LookupMode
	logger  *slog.Logger
}

var _ DataStore[int] = (*Indexed[int])(nil)

// NewIndexed indexes the source in one pass. open must yield seekable
// sources. release, if non-nil, is closed by Close, or before NewIndexed
// returns an error.
func NewIndexed[T any](ctx context.Context, format visit.Format[T], open SourceFunc, release io.Closer, opts ...Option) (_ *Indexed[T], err error) {
	defer func() {
		if err != nil && release != nil {
			err = errors.Join(err, release.Close())
		}
	}()

	cfg, err := applyOptions(opts)
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
	if !src.IsSeekable() {
		return nil, fmt.Errorf("%w: indexed store needs a seekable source, %q is sequential", ErrInvalidArgument, src.Name())
	}

	b := newIndexBuilder(cfg.filter, cfg.duplicates, src.Size())
	if err := format.NewParser(src).Parse(ctx, b); err != nil {
		return nil, wrapParse(src.Name(), err)
	}
	idx, err := b.result()
	if err != nil {
		return nil, wrapParse(src.Name(), err)
	}

	s := &Indexed[T]{
		format:  format,
		open:    open,
		release: release,
		idx:     idx,
		lookup:  cfg.lookup,
		logger:  cfg.logger,
	}
	s.markReady()
	cfg.logger.Debug("built indexed store",
		"source", src.Name(),
		"format", format.Name(),
		"records", idx.records,
		"ids", idx.len(),
		"lookup", cfg.lookup.String(),
		"bitmap_bytes", idx.live.SizeInBytes(),
		"elapsed", time.Since(start),
	)
	return s, nil
}

// Get re-parses the record for id.
func (s *Indexed[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return zero, false, err
	}
	e, ok := s.idx.entries[id]
	if !ok {
		return zero, false, nil
	}
	rec, err := s.load(ctx, id, e)
	if err != nil {
		return zero, false, err
	}
	return rec, true, nil
}

func (s *Indexed[T]) load(ctx context.Context, id string, e *indexEntry) (T, error) {
	var zero T
	src, closer, err := openSource(ctx, s.open)
	if err != nil {
		return zero, err
	}
	defer func() { _ = closer.Close() }()

	v := &lookupVisitor[T]{format: s.format, want: id}
	switch s.lookup {
	case LookupRange:
		sub, serr := src.Slice(e.rng)
		if serr != nil {
			return zero, wrapParse(src.Name(), serr)
		}
		err = s.format.NewParser(sub).Parse(ctx, v)
	default:
		err = s.format.NewParser(src).ParseFrom(ctx, v, e.memento)
	}
	if err != nil {
		return zero, wrapParse(src.Name(), err)
	}

	switch {
	case !v.seen:
		return zero, &ParseError{Source: src.Name(), Offset: e.rng.Start, Err: io.ErrUnexpectedEOF}
	case v.got != id:
		return zero, &ParseError{
			Source: src.Name(),
			Offset: e.rng.Start,
			Err:    fmt.Errorf("indexed record %q, found %q", id, v.got),
		}
	case !v.found:
		return zero, &ParseError{Source: src.Name(), Offset: e.rng.Start, Err: errors.New("record not materialized")}
	}
	return v.rec, nil
}

// lookupVisitor materializes the first record it sees and halts.
type lookupVisitor[T any] struct {
	format visit.Format[T]
	want   string

	seen  bool
	got   string
	found bool
	rec   T
}

func (v *lookupVisitor[T]) VisitRecordStart(id string, cb visit.Callback) visit.RecordVisitor {
	cb.HaltParsing()
	if v.seen {
		return nil
	}
	v.seen, v.got = true, id
	if id != v.want {
		return nil
	}
	return v.format.NewMaterializer(id, func(rec T) {
		v.rec, v.found = rec, true
	})
}

func (v *lookupVisitor[T]) VisitEnd() {}
func (v *lookupVisitor[T]) Halted()   {}

// Contains consults the index only.
func (s *Indexed[T]) Contains(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return false, err
	}
	_, ok := s.idx.entries[id]
	return ok, nil
}

// Size returns the number of indexed ids.
func (s *Indexed[T]) Size(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return 0, err
	}
	return s.idx.len(), nil
}

// IDs yields the ids in first-occurrence order.
func (s *Indexed[T]) IDs(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		s.mu.RLock()
		err := s.check()
		var order []string
		if err == nil {
			order = s.idx.order
		}
		s.mu.RUnlock()
		if err != nil {
			yield("", err)
			return
		}
		for _, id := range order {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if s.IsClosed() {
				yield("", ErrClosed)
				return
			}
			if !yield(id, nil) {
				return
			}
		}
	}
}

// Values yields the records in id order. Consecutive records are read in
// one resumed parse; the lock is never held while yielding.
func (s *Indexed[T]) Values(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		next := 0
		for {
			batch, n, err := s.readRun(ctx, next)
			if err != nil {
				yield(zero, err)
				return
			}
			if len(batch) == 0 {
				return
			}
			for _, rec := range batch {
				if !yield(rec, nil) {
					return
				}
			}
			next = n
		}
	}
}

// readRun materializes the ids starting at position from of the id order,
// as far as they follow each other in the file.
func (s *Indexed[T]) readRun(ctx context.Context, from int) ([]T, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.check(); err != nil {
		return nil, from, err
	}
	if err := ctx.Err(); err != nil {
		return nil, from, err
	}
	order := s.idx.order
	if from >= len(order) {
		return nil, from, nil
	}
	want := order[from:min(from+valuesBatch, len(order))]
	first := s.idx.entries[want[0]]

	src, closer, err := openSource(ctx, s.open)
	if err != nil {
		return nil, from, err
	}
	defer func() { _ = closer.Close() }()

	v := &runVisitor[T]{format: s.format, idx: s.idx, want: want, next: first.ordinal}
	if err := s.format.NewParser(src).ParseFrom(ctx, v, first.memento); err != nil {
		return nil, from, wrapParse(src.Name(), err)
	}
	if v.err != nil {
		return nil, from, &ParseError{Source: src.Name(), Offset: first.rng.Start, Err: v.err}
	}
	if len(v.records) == 0 {
		return nil, from, &ParseError{Source: src.Name(), Offset: first.rng.Start, Err: io.ErrUnexpectedEOF}
	}
	return v.records, from + len(v.records), nil
}

// runVisitor walks the file from a memento, materializing the wanted ids
// while their ordinals follow each other. Records without a live ordinal
// are skipped.
type runVisitor[T any] struct {
	format visit.Format[T]
	idx    *index
	want   []string
	next   uint32

	records []T
	err     error
}

func (v *runVisitor[T]) VisitRecordStart(id string, cb visit.Callback) visit.RecordVisitor {
	ord := v.next
	v.next++

	k := len(v.records)
	if k >= len(v.want) {
		cb.HaltParsing()
		return nil
	}
	if !v.idx.live.Contains(ord) {
		return nil
	}
	if target := v.idx.entries[v.want[k]].ordinal; ord != target {
		// the next id in order lives elsewhere in the file
		cb.HaltParsing()
		return nil
	}
	if id != v.want[k] {
		v.err = fmt.Errorf("indexed record %q, found %q", v.want[k], id)
		cb.HaltParsing()
		return nil
	}
	if v.lastInRun(k, ord) {
		cb.HaltParsing()
	}
	return v.format.NewMaterializer(id, func(rec T) {
		v.records = append(v.records, rec)
	})
}

// lastInRun reports whether the run ends after the record at ord.
func (v *runVisitor[T]) lastInRun(k int, ord uint32) bool {
	if k+1 >= len(v.want) {
		return true
	}
	nextOrd := v.idx.entries[v.want[k+1]].ordinal
	if nextOrd < ord || nextOrd-ord-1 > maxSkipped {
		return true
	}
	// a live record in between belongs to an id earlier in the order
	return v.idx.live.CountRange(ord+1, nextOrd) > 0
}

func (v *runVisitor[T]) VisitEnd() {}
func (v *runVisitor[T]) Halted()   {}

// Close drops the index and releases the backing file. Subsequent calls
// are no-ops.
func (s *Indexed[T]) Close() error {
	if !s.markClosed() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idx = nil
	var err error
	if s.release != nil {
		err = s.release.Close()
	}
	if s.logger != nil {
		s.logger.Debug("closed indexed store", "error", err)
	}
	return err
}
