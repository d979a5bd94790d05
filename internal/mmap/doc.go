// Package mmap provides read-only memory-mapped file access.
//
// Local record files are mapped once per open store so index lookups read
// records straight out of the page cache:
//
//	m, err := mmap.Open("contigs.fa", mmap.AccessRandom)
//	if err != nil { ... }
//	defer m.Close()
//
//	region, _ := m.Region(offset, size)
//	rec := region.Bytes()
//
// Unix uses mmap(2) with madvise(2) for access hints; Windows uses
// CreateFileMapping/MapViewOfFile and ignores hints.
//
// Mapping and Region are safe for concurrent reads. Close is idempotent, but
// callers must ensure no goroutine touches Bytes after Close returns.
package mmap
