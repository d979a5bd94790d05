package datastore

import (
	"errors"
	"fmt"
	"math"

	"github.com/hupe1980/seqstore/internal/bitmap"
	"github.com/hupe1980/seqstore/visit"
)

// indexEntry locates the record an id maps to.
type indexEntry struct {
	ordinal uint32 // position among all records of the file
	memento visit.Memento
	rng     visit.ByteRange
}

// index maps ids to record positions. order holds ids in first-occurrence
// order; live holds the ordinals of records some id maps to.
type index struct {
	order   []string
	entries map[string]*indexEntry
	live    *bitmap.Ordinals
	records uint32
}

func (x *index) len() int { return len(x.order) }

// indexBuilder is the visitor of the Indexed construction pass. It asks
// for a memento at every record start, accepted or not, because that
// offset also ends the byte range of the previous record.
type indexBuilder struct {
	filter Filter
	policy DuplicatePolicy
	size   int64

	idx     *index
	pending *indexEntry
	err     error
	done    bool
}

func newIndexBuilder(filter Filter, policy DuplicatePolicy, sourceSize int64) *indexBuilder {
	return &indexBuilder{
		filter: filter,
		policy: policy,
		size:   sourceSize,
		idx: &index{
			entries: make(map[string]*indexEntry),
			live:    bitmap.New(),
		},
	}
}

func (b *indexBuilder) VisitRecordStart(id string, cb visit.Callback) visit.RecordVisitor {
	if b.idx.records == math.MaxUint32 {
		b.fail(cb, errors.New("too many records"))
		return nil
	}
	ord := b.idx.records
	b.idx.records++

	m, err := cb.CreateMemento()
	if err != nil {
		b.fail(cb, err)
		return nil
	}
	b.closePending(m.Offset())

	if !b.filter.Accept(id) {
		return nil
	}

	prev, dup := b.idx.entries[id]
	if dup {
		switch b.policy {
		case FirstWins:
			return nil
		case RejectDuplicates:
			b.fail(cb, duplicateError(id))
			return nil
		}
		b.idx.live.Remove(prev.ordinal)
	} else {
		b.idx.order = append(b.idx.order, id)
	}

	e := &indexEntry{ordinal: ord, memento: m, rng: visit.ByteRange{Start: m.Offset()}}
	b.idx.entries[id] = e
	b.idx.live.Add(ord)
	b.pending = e
	return nil
}

func (b *indexBuilder) closePending(end int64) {
	if b.pending != nil {
		b.pending.rng.Length = end - b.pending.rng.Start
		b.pending = nil
	}
}

func (b *indexBuilder) fail(cb visit.Callback, err error) {
	if b.err == nil {
		b.err = err
	}
	cb.HaltParsing()
}

func (b *indexBuilder) VisitEnd() {
	b.closePending(b.size)
	b.done = true
}

func (b *indexBuilder) Halted() {}

func (b *indexBuilder) result() (*index, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.done {
		return nil, fmt.Errorf("%w: index pass stopped before end of source", ErrParse)
	}
	b.idx.live.Optimize()
	return b.idx, nil
}
