package visit

import (
	"errors"
	"fmt"
)

var (
	// ErrMementoMisuse is returned when a memento is handed to a parser that
	// did not create it (different format or different source).
	ErrMementoMisuse = errors.New("visit: memento used with a foreign parser")

	// ErrMementoUnsupported is returned by CreateMemento and ParseFrom on
	// sources that cannot be resumed (sequential streams).
	ErrMementoUnsupported = errors.New("visit: mementos not supported by this source")

	// ErrParserReused is returned when a Parser is asked for a second pass.
	ErrParserReused = errors.New("visit: parser already used")
)

// Memento is an opaque resume position.
type Memento interface {
	// Offset is the byte offset of the record start within the source.
	Offset() int64
	// Owner identifies the format and source that created the memento.
	Owner() string
}

type offsetMemento struct {
	owner  string
	offset int64
}

func (m offsetMemento) Offset() int64 { return m.offset }
func (m offsetMemento) Owner() string { return m.owner }

func (m offsetMemento) String() string {
	return fmt.Sprintf("%s@%d", m.owner, m.offset)
}

// NewMemento returns an offset memento tagged with owner.
func NewMemento(owner string, offset int64) Memento {
	return offsetMemento{owner: owner, offset: offset}
}

// Owner builds the owner tag for a format/source pair.
func Owner(format, source string) string {
	return format + ":" + source
}

// Resolve returns the offset of m after checking it belongs to owner.
func Resolve(m Memento, owner string) (int64, error) {
	if m == nil {
		return 0, fmt.Errorf("%w: nil memento", ErrMementoMisuse)
	}
	if m.Owner() != owner {
		return 0, fmt.Errorf("%w: created by %q, used by %q", ErrMementoMisuse, m.Owner(), owner)
	}
	if m.Offset() < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrMementoMisuse, m.Offset())
	}
	return m.Offset(), nil
}
