package datastore

import (
	"context"
	"errors"
	"iter"
	"log/slog"
)

// Composite is the ordered union of several stores. Get returns the first
// delegate's record for an id; ids present in several delegates appear
// once per delegate in IDs and Values.
type Composite[T any] struct {
	lifecycle

	delegates []DataStore[T]
	logger    *slog.Logger
}

var _ DataStore[int] = (*Composite[int])(nil)

// NewComposite combines delegates in order. Only WithLogger is honored.
func NewComposite[T any](delegates []DataStore[T], opts ...Option) (*Composite[T], error) {
	if len(delegates) == 0 {
		return nil, ErrNoDelegates
	}
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	c := &Composite[T]{
		delegates: append([]DataStore[T](nil), delegates...),
		logger:    cfg.logger,
	}
	c.markReady()
	return c, nil
}

// Get asks each delegate in order. A failing delegate is skipped, so an id
// only present in a broken delegate reads as not found. Cancellation of
// ctx is not swallowed.
func (c *Composite[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	if err := c.check(); err != nil {
		return zero, false, err
	}
	for i, d := range c.delegates {
		rec, ok, err := d.Get(ctx, id)
		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return zero, false, cerr
			}
			c.logger.Debug("composite delegate failed", "delegate", i, "id", id, "error", err)
			continue
		}
		if ok {
			return rec, true, nil
		}
	}
	return zero, false, nil
}

// Contains reports whether any delegate holds id.
func (c *Composite[T]) Contains(ctx context.Context, id string) (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	for _, d := range c.delegates {
		ok, err := d.Contains(ctx, id)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Size sums the delegate sizes.
func (c *Composite[T]) Size(ctx context.Context) (int, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	total := 0
	for _, d := range c.delegates {
		n, err := d.Size(ctx)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// IDs concatenates the delegates' ids.
func (c *Composite[T]) IDs(ctx context.Context) iter.Seq2[string, error] {
	return concat(c, func(d DataStore[T]) iter.Seq2[string, error] { return d.IDs(ctx) })
}

// Values concatenates the delegates' records.
func (c *Composite[T]) Values(ctx context.Context) iter.Seq2[T, error] {
	return concat(c, func(d DataStore[T]) iter.Seq2[T, error] { return d.Values(ctx) })
}

func concat[T, V any](c *Composite[T], seq func(DataStore[T]) iter.Seq2[V, error]) iter.Seq2[V, error] {
	return func(yield func(V, error) bool) {
		var zero V
		if err := c.check(); err != nil {
			yield(zero, err)
			return
		}
		for _, d := range c.delegates {
			for v, err := range seq(d) {
				if !yield(v, err) || err != nil {
					return
				}
			}
		}
	}
}

// Close closes every delegate and joins their errors.
func (c *Composite[T]) Close() error {
	if !c.markClosed() {
		return nil
	}
	errs := make([]error, 0, len(c.delegates))
	for _, d := range c.delegates {
		errs = append(errs, d.Close())
	}
	return errors.Join(errs...)
}
