package datastore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqstore/format/fasta"
)

func manyRecords(n int) []byte {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("r%04d", i)
	}
	return fastaFile(ids...)
}

func TestStreamingSequentialSource(t *testing.T) {
	f := newTrackedFile(fastaFile("A", "B", "C"))
	f.sequential = true
	ctx := context.Background()

	s, err := NewStreaming(fasta.Format{}, f.open, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, recordIDs(collect(t, s.Values(ctx))))

	rec, ok, err := s.Get(ctx, "B")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, seqOf("B", 1), rec.Sequence)

	require.NoError(t, s.Close())
	assert.True(t, f.balanced())
}

func TestStreamingRejectsSecondIteration(t *testing.T) {
	ctx := context.Background()
	s, err := NewStreaming(fasta.Format{}, BytesSource("r.fa", manyRecords(100)), nil, WithQueueSize(1))
	require.NoError(t, err)
	defer s.Close()

	it, err := s.Stream(ctx)
	require.NoError(t, err)

	_, err = s.Stream(ctx)
	assert.ErrorIs(t, err, ErrConcurrentIteration)
	for _, err := range s.Values(ctx) {
		assert.ErrorIs(t, err, ErrConcurrentIteration)
	}

	require.NoError(t, it.Close())

	it2, err := s.Stream(ctx)
	require.NoError(t, err)
	require.True(t, it2.Next())
	assert.Equal(t, "r0000", it2.ID())
	require.NoError(t, it2.Close())
}

func TestStreamingDrainedIteratorFreesStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewStreaming(fasta.Format{}, BytesSource("abc.fa", fastaFile("A", "B")), nil)
	require.NoError(t, err)
	defer s.Close()

	it, err := s.Stream(ctx)
	require.NoError(t, err)
	var got []string
	for it.Next() {
		got = append(got, it.Record().ID)
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []string{"A", "B"}, got)
	assert.False(t, it.Next())

	// drained without Close: a new iteration may start
	assert.Len(t, collect(t, s.IDs(ctx)), 2)
}

func TestStreamingEarlyBreakReleasesSource(t *testing.T) {
	f := newTrackedFile(manyRecords(1000))
	ctx := context.Background()

	s, err := NewStreaming(fasta.Format{}, f.open, nil, WithQueueSize(2))
	require.NoError(t, err)
	defer s.Close()

	n := 0
	for _, err := range s.Values(ctx) {
		require.NoError(t, err)
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3, n)
	assert.Equal(t, int32(1), f.opens.Load())
	assert.True(t, f.balanced(), "producer must close its source before the iterator closes")
}

func TestStreamingCloseStopsProducer(t *testing.T) {
	f := newTrackedFile(manyRecords(1000))
	ctx := context.Background()

	s, err := NewStreaming(fasta.Format{}, f.open, nil, WithQueueSize(1))
	require.NoError(t, err)

	it, err := s.Stream(ctx)
	require.NoError(t, err)
	require.True(t, it.Next())

	closed := make(chan error, 1)
	go func() { closed <- s.Close() }()

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close blocked on a producer waiting to send")
	}
	assert.True(t, f.balanced())

	for it.Next() {
	}
	assert.ErrorIs(t, it.Err(), ErrClosed)
	require.NoError(t, it.Close())
}

func TestStreamingContextCancel(t *testing.T) {
	f := newTrackedFile(manyRecords(1000))
	ctx, cancel := context.WithCancel(context.Background())

	s, err := NewStreaming(fasta.Format{}, f.open, nil, WithQueueSize(1))
	require.NoError(t, err)
	defer s.Close()

	it, err := s.Stream(ctx)
	require.NoError(t, err)
	require.True(t, it.Next())
	cancel()

	for it.Next() {
	}
	assert.ErrorIs(t, it.Err(), context.Canceled)
	require.NoError(t, it.Close())
	assert.True(t, f.balanced())
	assert.False(t, s.IsClosed())
}

func TestStreamingSizeIsMemoized(t *testing.T) {
	f := newTrackedFile(fastaFile("A", "B", "A"))
	ctx := context.Background()

	s, err := NewStreaming(fasta.Format{}, f.open, nil)
	require.NoError(t, err)
	defer s.Close()

	for range 3 {
		n, err := s.Size(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	}
	assert.Equal(t, int32(1), f.opens.Load())
}

func TestStreamingContainsStopsAtFirstMatch(t *testing.T) {
	// the second record is malformed; Contains("A") must not reach it
	data := []byte(">A\nACGT\n>\nACGT\n")
	ctx := context.Background()

	s, err := NewStreaming(fasta.Format{}, BytesSource("bad.fa", data), nil)
	require.NoError(t, err)
	defer s.Close()

	ok, err := s.Contains(ctx, "A")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Contains(ctx, "Z")
	assert.ErrorIs(t, err, ErrParse)
}

func TestStreamingProducerError(t *testing.T) {
	data := []byte(">A\nACGT\n>B\nAC\n>\nACGT\n")
	ctx := context.Background()

	s, err := NewStreaming(fasta.Format{}, BytesSource("bad.fa", data), nil)
	require.NoError(t, err)
	defer s.Close()

	var ids []string
	var last error
	for rec, err := range s.Values(ctx) {
		if err != nil {
			last = err
			break
		}
		ids = append(ids, rec.ID)
	}
	assert.Equal(t, []string{"A", "B"}, ids)
	assert.ErrorIs(t, last, ErrParse)
}

type countingLimiter struct {
	mu       sync.Mutex
	acquired int
	released int
}

func (l *countingLimiter) AcquireProducer(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.acquired++
	return ctx.Err()
}

func (l *countingLimiter) ReleaseProducer() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released++
}

func TestStreamingProducerLimiter(t *testing.T) {
	lim := &countingLimiter{}
	ctx := context.Background()

	s, err := NewStreaming(fasta.Format{}, BytesSource("abc.fa", fastaFile("A", "B")), nil, WithProducerLimiter(lim))
	require.NoError(t, err)
	defer s.Close()

	assert.Len(t, collect(t, s.Values(ctx)), 2)
	assert.Len(t, collect(t, s.IDs(ctx)), 2)

	lim.mu.Lock()
	defer lim.mu.Unlock()
	assert.Equal(t, 2, lim.acquired)
	assert.Equal(t, 2, lim.released)
}

func TestStreamingReleaseClosedOnce(t *testing.T) {
	calls := 0
	release := closerFunc(func() error {
		calls++
		return nil
	})
	s, err := NewStreaming(fasta.Format{}, BytesSource("a.fa", fastaFile("A")), release)
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, calls)
}
