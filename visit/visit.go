package visit

import "context"

// Visitor receives record boundaries from a Parser.
type Visitor interface {
	// VisitRecordStart is called at the start of every record. Returning nil
	// skips the record body; the parser then moves on to the next record.
	VisitRecordStart(id string, cb Callback) RecordVisitor
	// VisitEnd is called once all records have been consumed.
	VisitEnd()
	// Halted is called instead of VisitEnd when a callback requested a halt.
	Halted()
}

// RecordVisitor receives the body of a single record.
//
// Formats extend this interface with their own body methods (sequence lines,
// quality lines, raw payloads). VisitEnd is the only call every format makes.
type RecordVisitor interface {
	VisitEnd()
}

// Callback is offered to the Visitor at each record boundary.
type Callback interface {
	// HaltParsing stops the parser after the current record. No further
	// body or record-start calls are made and the Visitor gets Halted().
	HaltParsing()
	// CanCreateMemento reports whether CreateMemento is supported.
	CanCreateMemento() bool
	// CreateMemento returns a resume token for the current record.
	CreateMemento() (Memento, error)
}

// Parser scans one Source. A Parser is used for a single pass.
type Parser interface {
	// Parse visits every record from the start of the source.
	Parse(ctx context.Context, v Visitor) error
	// ParseFrom resumes at the record the memento was created for.
	ParseFrom(ctx context.Context, v Visitor, m Memento) error
}

// Format describes one record grammar.
// Implementations must be safe for concurrent use; parsers need not be.
type Format[T any] interface {
	// Name is a short stable identifier, e.g. "fasta".
	Name() string
	// NewParser returns a fresh parser over src.
	NewParser(src Source) Parser
	// NewMaterializer returns a RecordVisitor that accumulates the body of
	// record id and calls emit with the finished record from VisitEnd.
	NewMaterializer(id string, emit func(T)) RecordVisitor
}

// Finish reports the end of a pass to v.
func Finish(v Visitor, halted bool) {
	if halted {
		v.Halted()
		return
	}
	v.VisitEnd()
}
