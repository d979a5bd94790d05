package blobstore

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/hupe1980/seqstore/internal/cache"
	"github.com/hupe1980/seqstore/resource"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBlockSize       = 64 * 1024
	defaultFillConcurrency = 16
)

type blockKey struct {
	name  string
	block int64
}

// CachingStore wraps a BlobStore and adds block-level caching of random
// reads. It is meant for remote backends where every ReadAt is a request.
type CachingStore struct {
	inner           BlobStore
	cache           *cache.LRU[blockKey, []byte]
	blockSize       int64
	fillConcurrency int
	rc              *resource.Controller
}

// CachingOption configures a CachingStore.
type CachingOption func(*CachingStore)

// WithBlockSize sets the cache block size in bytes.
func WithBlockSize(n int64) CachingOption {
	return func(s *CachingStore) {
		if n > 0 {
			s.blockSize = n
		}
	}
}

// WithFillConcurrency bounds the parallel backend reads of one cache fill.
func WithFillConcurrency(n int) CachingOption {
	return func(s *CachingStore) {
		if n > 0 {
			s.fillConcurrency = n
		}
	}
}

// WithResourceController charges cached blocks to rc's memory budget and
// throttles backend reads through its IO budget.
func WithResourceController(rc *resource.Controller) CachingOption {
	return func(s *CachingStore) {
		s.rc = rc
	}
}

// NewCachingStore creates a CachingStore holding up to capacityBytes of
// blocks.
func NewCachingStore(inner BlobStore, capacityBytes int64, opts ...CachingOption) *CachingStore {
	s := &CachingStore{
		inner:           inner,
		blockSize:       defaultBlockSize,
		fillConcurrency: defaultFillConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = cache.NewLRU[blockKey, []byte](capacityBytes, cache.ByteCost, s.rc)
	return s
}

func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{
		inner: b,
		store: s,
		name:  name,
	}, nil
}

func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Invalidate drops all cached blocks of the named blob.
func (s *CachingStore) Invalidate(name string) {
	s.cache.Invalidate(func(k blockKey) bool { return k.name == name })
}

// Stats returns block cache hit and miss counters.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}

// CachingBlob wraps a Blob and uses the block cache for ReadAt.
type CachingBlob struct {
	inner Blob
	store *CachingStore
	name  string
}

func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

// ReadRange bypasses the cache: sequential passes read every block exactly
// once and would only evict hot blocks.
func (b *CachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	return b.inner.ReadRange(ctx, off, length)
}

func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, errors.New("blobstore: negative offset")
	}

	size := b.Size()
	if off >= size {
		return 0, io.EOF
	}
	want := p
	if rem := size - off; int64(len(want)) > rem {
		want = want[:rem]
	}

	bs := b.store.blockSize
	startBlock := off / bs
	endBlock := (off + int64(len(want)) - 1) / bs

	fetched, err := b.fillCache(ctx, startBlock, endBlock)
	if err != nil {
		return 0, err
	}

	total := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		data, ok := fetched[blk]
		if !ok {
			data, ok = b.store.cache.Get(blockKey{name: b.name, block: blk})
		}
		if !ok {
			return total, io.ErrUnexpectedEOF
		}

		blkStart := blk * bs
		from := max(blkStart, off)
		to := min(blkStart+int64(len(data)), off+int64(len(want)))
		if to <= from {
			break
		}
		total += copy(want[from-off:to-off], data[from-blkStart:to-blkStart])
	}

	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

// fillCache loads the missing blocks of [startBlock, endBlock], fetching
// contiguous runs of missing blocks with one backend request each. It
// returns the blocks it fetched so the caller does not depend on the cache
// admitting them.
func (b *CachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) (map[int64][]byte, error) {
	type run struct{ start, count int64 }

	var missing []run
	for blk := startBlock; blk <= endBlock; blk++ {
		if _, ok := b.store.cache.Get(blockKey{name: b.name, block: blk}); ok {
			continue
		}
		if n := len(missing); n > 0 && missing[n-1].start+missing[n-1].count == blk {
			missing[n-1].count++
			continue
		}
		missing = append(missing, run{start: blk, count: 1})
	}

	fetched := make(map[int64][]byte)
	if len(missing) == 0 {
		return fetched, nil
	}

	var mu sync.Mutex
	bs := b.store.blockSize
	size := b.Size()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.store.fillConcurrency)

	for _, r := range missing {
		g.Go(func() error {
			byteStart := r.start * bs
			byteSize := min(r.count*bs, size-byteStart)
			if byteSize <= 0 {
				return nil
			}

			if err := b.store.rc.AcquireIO(gctx, int(byteSize)); err != nil {
				return err
			}

			buf := make([]byte, byteSize)
			n, err := b.inner.ReadAt(gctx, buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			buf = buf[:n]

			mu.Lock()
			defer mu.Unlock()
			for i := int64(0); i < r.count; i++ {
				lo := i * bs
				if lo >= int64(len(buf)) {
					break
				}
				hi := min(lo+bs, int64(len(buf)))
				// copy so a cached block does not pin the whole run
				block := make([]byte, hi-lo)
				copy(block, buf[lo:hi])

				fetched[r.start+i] = block
				b.store.cache.Set(blockKey{name: b.name, block: r.start + i}, block)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fetched, nil
}
