package seqstore_test

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqstore"
	"github.com/hupe1980/seqstore/blobstore"
	"github.com/hupe1980/seqstore/format/fasta"
)

func contigs(n int) []byte {
	var buf bytes.Buffer
	for i := range n {
		fmt.Fprintf(&buf, ">contig%d len=%d\nACGTACGTAC\nGT%d\n", i, 12, i)
	}
	return buf.Bytes()
}

// TestNoGoroutineLeaks verifies that streaming producers are stopped when
// an iteration is abandoned or the store is closed mid-iteration.
func TestNoGoroutineLeaks(t *testing.T) {
	tests := []struct {
		name     string
		run      func(t *testing.T, s seqstore.DataStore[fasta.Record])
		maxLeaks int // Allow small variance (runtime background goroutines)
	}{
		{
			name: "abandoned iteration",
			run: func(t *testing.T, s seqstore.DataStore[fasta.Record]) {
				for range 10 {
					n := 0
					for _, err := range s.Values(context.Background()) {
						require.NoError(t, err)
						n++
						if n == 3 {
							break
						}
					}
				}
				require.NoError(t, s.Close())
			},
			maxLeaks: 2,
		},
		{
			name: "close while producer blocked",
			run: func(t *testing.T, s seqstore.DataStore[fasta.Record]) {
				next, stop := iterPull(s)
				defer stop()
				_, ok := next()
				require.True(t, ok)
				require.NoError(t, s.Close())
			},
			maxLeaks: 2,
		},
		{
			name: "canceled context",
			run: func(t *testing.T, s seqstore.DataStore[fasta.Record]) {
				ctx, cancel := context.WithCancel(context.Background())
				defer cancel()
				var last error
				for _, err := range s.Values(ctx) {
					if err != nil {
						last = err
						break
					}
					cancel()
				}
				assert.ErrorIs(t, last, context.Canceled)
				require.NoError(t, s.Close())
			},
			maxLeaks: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Force GC to clean up any lingering goroutines from previous tests
			runtime.GC()
			time.Sleep(50 * time.Millisecond)

			initial := runtime.NumGoroutine()
			t.Logf("Initial goroutines: %d", initial)

			mem := blobstore.NewMemoryStore()
			require.NoError(t, mem.Put(context.Background(), "contigs.fa", contigs(2000)))
			s, err := seqstore.Open(context.Background(), mem, "contigs.fa", fasta.Format{},
				seqstore.WithProviderHint(seqstore.IterationOnly),
				seqstore.WithQueueSize(1),
			)
			require.NoError(t, err)

			tt.run(t, s)

			time.Sleep(100 * time.Millisecond)
			runtime.GC()

			final := runtime.NumGoroutine()
			t.Logf("Final goroutines: %d", final)
			leaked := final - initial
			assert.LessOrEqual(t, leaked, tt.maxLeaks, "goroutine leak detected: %d goroutines leaked", leaked)
		})
	}
}

// iterPull pulls from Values without finishing the range loop.
func iterPull(s seqstore.DataStore[fasta.Record]) (func() (fasta.Record, bool), func()) {
	recs := make(chan fasta.Record)
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer close(recs)
		for rec, err := range s.Values(context.Background()) {
			if err != nil {
				return
			}
			select {
			case recs <- rec:
			case <-done:
				return
			}
		}
	}()
	next := func() (fasta.Record, bool) {
		rec, ok := <-recs
		return rec, ok
	}
	stop := func() {
		close(done)
		<-finished
	}
	return next, stop
}

func TestCloseIsIdempotentForAllHints(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	require.NoError(t, mem.Put(ctx, "contigs.fa", contigs(5)))

	for _, hint := range []seqstore.ProviderHint{seqstore.RandomAccessEager, seqstore.RandomAccessLazy, seqstore.IterationOnly} {
		t.Run(hint.String(), func(t *testing.T) {
			s, err := seqstore.Open(ctx, mem, "contigs.fa", fasta.Format{},
				seqstore.WithProviderHint(hint),
				seqstore.WithCacheSize(2),
			)
			require.NoError(t, err)

			require.NoError(t, s.Close())
			require.NoError(t, s.Close())
			assert.True(t, s.IsClosed())

			_, _, err = s.Get(ctx, "contig1")
			assert.ErrorIs(t, err, seqstore.ErrClosed)
			_, err = s.Size(ctx)
			assert.ErrorIs(t, err, seqstore.ErrClosed)
		})
	}
}
