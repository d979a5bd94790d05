package seqstore

import (
	"errors"
	"io"
)

// closers closes every element and joins the errors, in reverse order.
type closers []io.Closer

func (c closers) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if c[i] != nil {
			errs = append(errs, c[i].Close())
		}
	}
	return errors.Join(errs...)
}

// closeAll closes the opened delegates of a failed composite open.
func closeAll[T any](stores []DataStore[T]) error {
	errs := make([]error, 0, len(stores))
	for _, s := range stores {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
