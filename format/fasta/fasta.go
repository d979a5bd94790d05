// Package fasta implements the FASTA grammar:
//
//	>contig1 optional description
//	ACGTACGT
//	ACGT
//	>contig2
//	...
//
// A record starts at a '>' header line; its id is the header text up to the
// first whitespace. Sequence lines are concatenated with surrounding
// whitespace removed. Blank lines are ignored.
package fasta

import (
	"fmt"

	"github.com/hupe1980/seqstore/visit"
)

// Name is the format name used in memento owner tags.
const Name = "fasta"

// Record is one FASTA entry.
type Record struct {
	ID          string
	Description string
	Sequence    string
}

// Len returns the sequence length.
func (r Record) Len() int { return len(r.Sequence) }

// RecordVisitor receives the body of one FASTA record.
type RecordVisitor interface {
	visit.RecordVisitor
	// VisitDescription is called once with the header text after the id,
	// if there is any.
	VisitDescription(desc string)
	// VisitSequence is called per non-blank sequence line.
	VisitSequence(line []byte)
}

// Format is the FASTA visit.Format.
type Format struct{}

var _ visit.Format[Record] = Format{}

// Name implements visit.Format.
func (Format) Name() string { return Name }

// NewParser implements visit.Format.
func (Format) NewParser(src visit.Source) visit.Parser {
	return &parser{src: src, owner: visit.Owner(Name, src.Name())}
}

// NewMaterializer implements visit.Format.
func (Format) NewMaterializer(id string, emit func(Record)) visit.RecordVisitor {
	return &materializer{rec: Record{ID: id}, emit: emit}
}

type materializer struct {
	rec  Record
	seq  []byte
	emit func(Record)
}

func (m *materializer) VisitDescription(desc string) { m.rec.Description = desc }

func (m *materializer) VisitSequence(line []byte) { m.seq = append(m.seq, line...) }

func (m *materializer) VisitEnd() {
	m.rec.Sequence = string(m.seq)
	m.emit(m.rec)
}

func bodyVisitor(rv visit.RecordVisitor) (RecordVisitor, error) {
	if rv == nil {
		return nil, nil
	}
	body, ok := rv.(RecordVisitor)
	if !ok {
		return nil, fmt.Errorf("fasta: record visitor %T does not implement fasta.RecordVisitor", rv)
	}
	return body, nil
}
