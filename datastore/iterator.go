package datastore

import "sync"

// Iterator is a live streaming iteration. It is not safe for concurrent
// use.
//
//	it, err := store.Stream(ctx)
//	if err != nil { ... }
//	defer it.Close()
//	for it.Next() {
//		use(it.Record())
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator[T any] struct {
	store  *Streaming[T]
	items  <-chan item[T]
	res    *result
	done   <-chan struct{}
	cancel func()

	cur  item[T]
	err  error
	once sync.Once
}

// Next advances to the next record. It returns false at the end of the
// source, on failure, or after Close.
func (it *Iterator[T]) Next() bool {
	if it.err != nil || it.items == nil {
		return false
	}
	i, ok := <-it.items
	if !ok {
		it.err = it.res.err
		it.Close()
		return false
	}
	it.cur = i
	return true
}

// Record returns the current record.
func (it *Iterator[T]) Record() T { return it.cur.rec }

// ID returns the id of the current record.
func (it *Iterator[T]) ID() string { return it.cur.id }

// Err returns the error that ended the iteration, if any.
func (it *Iterator[T]) Err() error { return it.err }

// Close stops the producer, waits for it to release the source and frees
// the store for the next iteration. It is idempotent.
func (it *Iterator[T]) Close() error {
	it.once.Do(func() {
		it.cancel()
		<-it.done
		it.items = nil
		it.store.active.Store(false)
	})
	return nil
}
