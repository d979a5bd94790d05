package datastore

import "sync/atomic"

// lifecycle tracks the open -> closed transition shared by all stores.
type lifecycle struct {
	ready  atomic.Bool
	closed atomic.Bool
}

func (l *lifecycle) markReady() { l.ready.Store(true) }

// markClosed reports whether this call performed the transition.
func (l *lifecycle) markClosed() bool { return !l.closed.Swap(true) }

// IsClosed reports whether Close has been called.
func (l *lifecycle) IsClosed() bool { return l.closed.Load() }

func (l *lifecycle) check() error {
	if l.closed.Load() {
		return ErrClosed
	}
	if !l.ready.Load() {
		return ErrNotYetInitialized
	}
	return nil
}
