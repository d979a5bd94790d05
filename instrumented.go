package seqstore

import (
	"context"
	"iter"
	"sync/atomic"
	"time"
)

// instrumented reports every operation of a store to a MetricsCollector.
type instrumented[T any] struct {
	DataStore[T]
	mc     MetricsCollector
	logger *Logger
	closed atomic.Bool
}

func newInstrumented[T any](s DataStore[T], mc MetricsCollector, logger *Logger) *instrumented[T] {
	return &instrumented[T]{DataStore: s, mc: mc, logger: logger}
}

func (s *instrumented[T]) Get(ctx context.Context, id string) (T, bool, error) {
	start := time.Now()
	rec, ok, err := s.DataStore.Get(ctx, id)
	s.mc.RecordGet(time.Since(start), ok, err)
	return rec, ok, err
}

func (s *instrumented[T]) IDs(ctx context.Context) iter.Seq2[string, error] {
	return observe(s.DataStore.IDs(ctx), s.mc)
}

func (s *instrumented[T]) Values(ctx context.Context) iter.Seq2[T, error] {
	return observe(s.DataStore.Values(ctx), s.mc)
}

func (s *instrumented[T]) Close() error {
	if s.closed.Swap(true) {
		return s.DataStore.Close()
	}
	err := s.DataStore.Close()
	s.mc.RecordClose(err)
	s.logger.LogClose(context.Background(), err)
	return err
}

// observe counts the items an iteration yields, including early exits.
func observe[V any](seq iter.Seq2[V, error], mc MetricsCollector) iter.Seq2[V, error] {
	return func(yield func(V, error) bool) {
		start := time.Now()
		n := 0
		var failed error
		defer func() {
			mc.RecordIterate(n, time.Since(start), failed)
		}()
		for v, err := range seq {
			if err != nil {
				failed = err
			} else {
				n++
			}
			if !yield(v, err) {
				return
			}
		}
	}
}
