// Package fs provides a read-only file-system abstraction for testability and
// fault injection.
//
//   - [LocalFS]: production implementation using the os package
//   - [FaultyFS]: test utility that injects read, open and close failures and
//     counts open handles, so tests can assert that stores release files
//
// Production code uses fs.Default.
//
// The package does not take context.Context parameters: local reads are not
// interruptible at the syscall level. Slow backends go through
// blobstore.Blob, which does.
package fs
