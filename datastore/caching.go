package datastore

import (
	"context"
	"fmt"
	"iter"

	"github.com/hupe1980/seqstore/internal/cache"
)

// CacheStats reports Caching decorator activity.
type CacheStats struct {
	Hits     int64
	Misses   int64
	Len      int
	Capacity int64
}

// Caching keeps up to capacity successfully retrieved records in an LRU in
// front of a delegate. Only Get consults the cache; not-found results and
// failures are never cached.
type Caching[T any] struct {
	lifecycle

	delegate DataStore[T]
	cache    *cache.LRU[string, T]
}

var _ DataStore[int] = (*Caching[int])(nil)

// NewCaching wraps delegate. capacity must be at least 1.
func NewCaching[T any](delegate DataStore[T], capacity int) (*Caching[T], error) {
	if delegate == nil {
		return nil, fmt.Errorf("%w: nil delegate", ErrInvalidArgument)
	}
	if capacity < 1 {
		return nil, fmt.Errorf("%w: cache capacity %d", ErrInvalidArgument, capacity)
	}
	c := &Caching[T]{
		delegate: delegate,
		cache:    cache.NewLRU[string, T](int64(capacity), cache.UnitCost[T], nil),
	}
	c.markReady()
	return c, nil
}

// Get serves id from the cache or the delegate.
func (c *Caching[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	if err := c.check(); err != nil {
		return zero, false, err
	}
	if rec, ok := c.cache.Get(id); ok {
		return rec, true, nil
	}
	rec, ok, err := c.delegate.Get(ctx, id)
	if err != nil || !ok {
		return zero, ok, err
	}
	if !c.IsClosed() {
		c.cache.Set(id, rec)
	}
	return rec, true, nil
}

// Contains delegates.
func (c *Caching[T]) Contains(ctx context.Context, id string) (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	return c.delegate.Contains(ctx, id)
}

// Size delegates.
func (c *Caching[T]) Size(ctx context.Context) (int, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	return c.delegate.Size(ctx)
}

// IDs delegates.
func (c *Caching[T]) IDs(ctx context.Context) iter.Seq2[string, error] {
	if err := c.check(); err != nil {
		return failSeq[string](err)
	}
	return c.delegate.IDs(ctx)
}

// Values delegates. Iterated records do not populate the cache.
func (c *Caching[T]) Values(ctx context.Context) iter.Seq2[T, error] {
	if err := c.check(); err != nil {
		return failSeq[T](err)
	}
	return c.delegate.Values(ctx)
}

// Stats returns hit and occupancy counters.
func (c *Caching[T]) Stats() CacheStats {
	if c.cache == nil {
		return CacheStats{}
	}
	hits, misses := c.cache.Stats()
	return CacheStats{
		Hits:     hits,
		Misses:   misses,
		Len:      c.cache.Len(),
		Capacity: c.cache.Capacity(),
	}
}

// Close purges the cache and closes the delegate.
func (c *Caching[T]) Close() error {
	if !c.markClosed() {
		return nil
	}
	if c.cache != nil {
		c.cache.Purge()
	}
	if c.delegate == nil {
		return nil
	}
	return c.delegate.Close()
}

func failSeq[V any](err error) iter.Seq2[V, error] {
	return func(yield func(V, error) bool) {
		var zero V
		yield(zero, err)
	}
}
