// Package fastq implements the four-line FASTQ grammar:
//
//	@read1 optional description
//	ACGTN
//	+
//	IIII#
//
// The '+' separator may repeat the read id. Qualities are Phred+33 and must
// have the same length as the bases. Blank lines between records are
// ignored.
package fastq

import (
	"fmt"

	"github.com/hupe1980/seqstore/visit"
)

// Name is the format name used in memento owner tags.
const Name = "fastq"

// Record is one sequencing read.
type Record struct {
	ID          string
	Description string
	Sequence    string
	Quality     string
}

// Len returns the read length.
func (r Record) Len() int { return len(r.Sequence) }

// MeanQuality returns the mean Phred quality of the read, or 0 for an empty
// read.
func (r Record) MeanQuality() float64 {
	if len(r.Quality) == 0 {
		return 0
	}
	var sum int
	for i := 0; i < len(r.Quality); i++ {
		sum += int(r.Quality[i]) - 33
	}
	return float64(sum) / float64(len(r.Quality))
}

// RecordVisitor receives the body of one FASTQ record.
type RecordVisitor interface {
	visit.RecordVisitor
	VisitDescription(desc string)
	VisitBases(bases []byte)
	VisitQualities(quals []byte)
}

// Format is the FASTQ visit.Format.
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
	emit func(Record)
}

func (m *materializer) VisitDescription(desc string) { m.rec.Description = desc }
func (m *materializer) VisitBases(b []byte)          { m.rec.Sequence = string(b) }
func (m *materializer) VisitQualities(q []byte)      { m.rec.Quality = string(q) }
func (m *materializer) VisitEnd()                    { m.emit(m.rec) }

func bodyVisitor(rv visit.RecordVisitor) (RecordVisitor, error) {
	if rv == nil {
		return nil, nil
	}
	body, ok := rv.(RecordVisitor)
	if !ok {
		return nil, fmt.Errorf("fastq: record visitor %T does not implement fastq.RecordVisitor", rv)
	}
	return body, nil
}
