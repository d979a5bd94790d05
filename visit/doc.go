// Package visit defines the visitation protocol between a record format and
// the stores built on top of it.
//
// A Parser scans a Source and drives a Visitor:
//
//	VisitRecordStart(id, cb) -> RecordVisitor   // nil skips the body
//	    ... format-specific body calls ...
//	    RecordVisitor.VisitEnd()
//	...
//	Visitor.VisitEnd()                           // all records consumed
//	Visitor.Halted()                             // or: cb.HaltParsing() was called
//
// # Mementos
//
// At every record boundary the parser offers a Callback. On seekable sources
// the callback can create a Memento: an opaque resume token that lets a fresh
// parser of the same format over the same source continue from that record
// with ParseFrom. Mementos carry an owner tag; a parser rejects foreign
// mementos with ErrMementoMisuse instead of decoding garbage.
//
// Parsers over sequential (non-seekable) sources report
// CanCreateMemento() == false, and CreateMemento fails with
// ErrMementoUnsupported.
//
// # Formats
//
// Format[T] bundles the per-grammar pieces a store needs: a parser factory
// (one fresh Parser per pass) and a materializer that accumulates the body
// events of one record into a T.
package visit
