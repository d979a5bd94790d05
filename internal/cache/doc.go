// Package cache provides a generic, cost-bounded LRU cache.
//
// The cache backs two layers: the record cache of the caching DataStore
// decorator (cost 1 per record, bounded by count) and the block cache of
// blobstore.CachingStore (cost = block length, bounded by bytes). When a
// resource.Controller is attached, cached bytes are also charged against the
// controller's global memory budget.
package cache
