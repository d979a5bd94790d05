package visit

// StandardCallback is the Callback used by offset-based parsers.
// The parser calls Reset at every record boundary and checks Halted after
// every record.
type StandardCallback struct {
	owner    string
	seekable bool
	offset   int64
	halted   bool
}

// NewCallback returns a callback for a parser identified by owner.
// Mementos are only available when seekable is true.
func NewCallback(owner string, seekable bool) *StandardCallback {
	return &StandardCallback{owner: owner, seekable: seekable}
}

// Reset moves the callback to the record starting at offset.
func (c *StandardCallback) Reset(offset int64) {
	c.offset = offset
}

// HaltParsing implements Callback.
func (c *StandardCallback) HaltParsing() {
	c.halted = true
}

// Halted reports whether HaltParsing was called.
func (c *StandardCallback) Halted() bool {
	return c.halted
}

// CanCreateMemento implements Callback.
func (c *StandardCallback) CanCreateMemento() bool {
	return c.seekable
}

// CreateMemento implements Callback.
func (c *StandardCallback) CreateMemento() (Memento, error) {
	if !c.seekable {
		return nil, ErrMementoUnsupported
	}
	return NewMemento(c.owner, c.offset), nil
}
