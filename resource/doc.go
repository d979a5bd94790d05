// Package resource bounds the resources shared by all stores opened through
// one controller.
//
// Three budgets are managed:
//
//   - Memory: bytes held by block and record caches (non-blocking, fail-fast)
//   - Producers: concurrently running streaming producers (blocking semaphore)
//   - IO: bytes per second read by producers and cache fills (token bucket)
//
// All methods handle a nil *Controller gracefully: they become no-ops, so
// callers never need to check whether limiting is enabled.
package resource
