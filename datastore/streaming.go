package datastore

import (
	"context"
	"io"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/seqstore/visit"
)

// Streaming keeps no index. Iteration runs the parser on a producer
// goroutine that feeds a bounded queue; Get, Contains and Size scan the
// source. At most one iteration may be live at a time.
type Streaming[T any] struct {
	lifecycle

	format  visit.Format[T]
	open    SourceFunc
	release io.Closer
	cfg     config

	// mu orders wg.Add against Close.
	mu     sync.Mutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	active atomic.Bool

	sizeMu sync.Mutex
	size   int
	sized  bool
}

var _ DataStore[int] = (*Streaming[int])(nil)

// NewStreaming creates a store that reads the source on demand. The source
// may be sequential: every pass calls open again. release, if non-nil, is
// closed by Close.
func NewStreaming[T any](format visit.Format[T], open SourceFunc, release io.Closer, opts ...Option) (*Streaming[T], error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	if open == nil {
		_, _, err := openSource(context.Background(), nil)
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Streaming[T]{
		format:  format,
		open:    open,
		release: release,
		cfg:     cfg,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.markReady()
	return s, nil
}

// begin registers a pass so Close waits for it.
func (s *Streaming[T]) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	s.wg.Add(1)
	return nil
}

// Stream starts an iteration over the accepted records in file order. The
// caller must Close the iterator, or drain it, before starting another.
func (s *Streaming[T]) Stream(ctx context.Context) (*Iterator[T], error) {
	return s.stream(ctx, true)
}

func (s *Streaming[T]) stream(ctx context.Context, materialize bool) (*Iterator[T], error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	if !s.active.CompareAndSwap(false, true) {
		return nil, ErrConcurrentIteration
	}
	if err := s.begin(); err != nil {
		s.active.Store(false)
		return nil, err
	}

	pctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	items := make(chan item[T], s.cfg.queueSize)
	res := &result{}
	done := make(chan struct{})
	it := &Iterator[T]{
		store: s,
		items: items,
		res:   res,
		done:  done,
		cancel: func() {
			stop()
			cancel()
		},
	}
	go s.produce(pctx, items, res, done, materialize)
	return it, nil
}

type item[T any] struct {
	id  string
	rec T
}

// result carries the producer outcome. It is written before the queue is
// closed and read after the close is observed.
type result struct {
	err error
}

func (s *Streaming[T]) produce(ctx context.Context, items chan<- item[T], res *result, done chan<- struct{}, materialize bool) {
	defer s.wg.Done()
	defer close(done)
	defer close(items)

	err := s.runProducer(ctx, items, materialize)
	if ctx.Err() != nil {
		if s.IsClosed() {
			err = ErrClosed
		} else {
			err = ctx.Err()
		}
	}
	res.err = err
}

func (s *Streaming[T]) runProducer(ctx context.Context, items chan<- item[T], materialize bool) error {
	if l := s.cfg.limiter; l != nil {
		if err := l.AcquireProducer(ctx); err != nil {
			return err
		}
		defer l.ReleaseProducer()
	}
	src, closer, err := openSource(ctx, s.open)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil {
			s.cfg.logger.Debug("closing stream source", "source", src.Name(), "error", cerr)
		}
	}()

	v := &producerVisitor[T]{
		ctx:         ctx,
		items:       items,
		format:      s.format,
		filter:      s.cfg.filter,
		policy:      s.cfg.duplicates,
		materialize: materialize,
	}
	if v.policy != LastWins {
		v.seen = make(map[string]struct{})
	}
	if err := s.format.NewParser(src).Parse(ctx, v); err != nil {
		return wrapParse(src.Name(), err)
	}
	return v.err
}

// producerVisitor pushes accepted records into the queue. Under FirstWins
// and RejectDuplicates it remembers the ids it has emitted; under LastWins
// records are passed through as they occur.
type producerVisitor[T any] struct {
	ctx         context.Context
	items       chan<- item[T]
	format      visit.Format[T]
	filter      Filter
	policy      DuplicatePolicy
	materialize bool
	seen        map[string]struct{}
	err         error
}

func (v *producerVisitor[T]) VisitRecordStart(id string, cb visit.Callback) visit.RecordVisitor {
	if !v.filter.Accept(id) {
		return nil
	}
	if v.seen != nil {
		if _, dup := v.seen[id]; dup {
			if v.policy == RejectDuplicates {
				v.err = duplicateError(id)
				cb.HaltParsing()
			}
			return nil
		}
		v.seen[id] = struct{}{}
	}
	if !v.materialize {
		if !v.send(item[T]{id: id}) {
			cb.HaltParsing()
		}
		return nil
	}
	return v.format.NewMaterializer(id, func(rec T) {
		if !v.send(item[T]{id: id, rec: rec}) {
			cb.HaltParsing()
		}
	})
}

func (v *producerVisitor[T]) send(it item[T]) bool {
	select {
	case v.items <- it:
		return true
	case <-v.ctx.Done():
		return false
	}
}

func (v *producerVisitor[T]) VisitEnd() {}
func (v *producerVisitor[T]) Halted()   {}

// IDs yields the accepted ids in file order.
func (s *Streaming[T]) IDs(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		it, err := s.stream(ctx, false)
		if err != nil {
			yield("", err)
			return
		}
		defer it.Close()
		for it.Next() {
			if !yield(it.ID(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield("", err)
		}
	}
}

// Values yields the accepted records in file order.
func (s *Streaming[T]) Values(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		it, err := s.Stream(ctx)
		if err != nil {
			yield(zero, err)
			return
		}
		defer it.Close()
		for it.Next() {
			if !yield(it.Record(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(zero, err)
		}
	}
}

// Get scans the source for id.
func (s *Streaming[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	if err := s.check(); err != nil {
		return zero, false, err
	}
	if !s.cfg.filter.Accept(id) {
		return zero, false, nil
	}
	v := &scanVisitor[T]{format: s.format, want: id, policy: s.cfg.duplicates, materialize: true}
	if err := s.scan(ctx, v); err != nil {
		return zero, false, err
	}
	if v.err != nil {
		return zero, false, v.err
	}
	return v.rec, v.found, nil
}

// Contains scans the source up to the first occurrence of id.
func (s *Streaming[T]) Contains(ctx context.Context, id string) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	if !s.cfg.filter.Accept(id) {
		return false, nil
	}
	v := &scanVisitor[T]{format: s.format, want: id, policy: FirstWins}
	if err := s.scan(ctx, v); err != nil {
		return false, err
	}
	return v.found, nil
}

// Size counts the distinct accepted ids. The first successful count is
// memoized.
func (s *Streaming[T]) Size(ctx context.Context) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	s.sizeMu.Lock()
	defer s.sizeMu.Unlock()
	if s.sized {
		return s.size, nil
	}
	v := &countVisitor{filter: s.cfg.filter, policy: s.cfg.duplicates, seen: make(map[string]struct{})}
	if err := s.scan(ctx, v); err != nil {
		return 0, err
	}
	if v.err != nil {
		return 0, v.err
	}
	s.size, s.sized = len(v.seen), true
	return s.size, nil
}

// scan runs one pass over a fresh view on the calling goroutine.
func (s *Streaming[T]) scan(ctx context.Context, v visit.Visitor) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	src, closer, err := openSource(ctx, s.open)
	if err != nil {
		return s.scanErr(err)
	}
	defer func() { _ = closer.Close() }()
	if err := s.format.NewParser(src).Parse(ctx, v); err != nil {
		return s.scanErr(wrapParse(src.Name(), err))
	}
	if s.IsClosed() {
		return ErrClosed
	}
	return nil
}

func (s *Streaming[T]) scanErr(err error) error {
	if s.IsClosed() {
		return ErrClosed
	}
	return err
}

// scanVisitor finds id. FirstWins stops at the first match, LastWins keeps
// the last one and RejectDuplicates fails on a second one.
type scanVisitor[T any] struct {
	format      visit.Format[T]
	want        string
	policy      DuplicatePolicy
	materialize bool

	matches int
	found   bool
	rec     T
	err     error
}

func (v *scanVisitor[T]) VisitRecordStart(id string, cb visit.Callback) visit.RecordVisitor {
	if id != v.want {
		return nil
	}
	v.matches++
	switch v.policy {
	case FirstWins:
		cb.HaltParsing()
	case RejectDuplicates:
		if v.matches > 1 {
			v.err = duplicateError(id)
			cb.HaltParsing()
			return nil
		}
	}
	if !v.materialize {
		v.found = true
		return nil
	}
	return v.format.NewMaterializer(id, func(rec T) {
		v.rec, v.found = rec, true
	})
}

func (v *scanVisitor[T]) VisitEnd() {}
func (v *scanVisitor[T]) Halted()   {}

type countVisitor struct {
	filter Filter
	policy DuplicatePolicy
	seen   map[string]struct{}
	err    error
}

func (v *countVisitor) VisitRecordStart(id string, cb visit.Callback) visit.RecordVisitor {
	if !v.filter.Accept(id) {
		return nil
	}
	if _, dup := v.seen[id]; dup && v.policy == RejectDuplicates {
		v.err = duplicateError(id)
		cb.HaltParsing()
		return nil
	}
	v.seen[id] = struct{}{}
	return nil
}

func (v *countVisitor) VisitEnd() {}
func (v *countVisitor) Halted()   {}

// Close cancels running passes, waits for their producers to exit and
// releases the backing file. Subsequent calls are no-ops.
func (s *Streaming[T]) Close() error {
	s.mu.Lock()
	first := s.markClosed()
	s.mu.Unlock()
	if !first {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	var err error
	if s.release != nil {
		err = s.release.Close()
	}
	s.cfg.logDebug("closed streaming store", "error", err)
	return err
}
