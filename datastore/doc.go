// Package datastore exposes record-oriented flat files as keyed, closeable
// collections.
//
// A DataStore is built from a visit.Format (the grammar) and a SourceFunc
// (the backing file). Three variants trade memory for I/O:
//
//   - Eager: one pass materializes every record; no further I/O.
//   - Indexed: one pass records a memento and byte range per id; Get
//     re-parses a single record with a fresh parser.
//   - Streaming: no index at all; iteration runs the parser on a producer
//     goroutine feeding a bounded channel, lookups scan the file.
//
// Decorators compose on top of any variant:
//
//   - Caching: bounded LRU of successfully retrieved records.
//   - Composite: ordered union of several stores.
//
// A Filter given at construction decides which ids exist in the store at
// all. Every store moves from open to closed exactly once; afterwards all
// accessors fail with ErrClosed.
package datastore
