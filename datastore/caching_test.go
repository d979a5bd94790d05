package datastore

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqstore/format/fasta"
)

// stubStore is a map-backed DataStore that counts Get calls and can fail.
type stubStore struct {
	lifecycle
	name    string
	ids     []string
	records map[string]fasta.Record
	getErr  error
	closeFn func() error
	gets    int
}

func newStub(name string, ids ...string) *stubStore {
	s := &stubStore{name: name, records: make(map[string]fasta.Record)}
	for _, id := range ids {
		s.ids = append(s.ids, id)
		s.records[id] = fasta.Record{ID: id, Sequence: name + ":" + id}
	}
	s.markReady()
	return s
}

func (s *stubStore) Get(_ context.Context, id string) (fasta.Record, bool, error) {
	s.gets++
	if err := s.check(); err != nil {
		return fasta.Record{}, false, err
	}
	if s.getErr != nil {
		return fasta.Record{}, false, s.getErr
	}
	r, ok := s.records[id]
	return r, ok, nil
}

func (s *stubStore) Contains(_ context.Context, id string) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	_, ok := s.records[id]
	return ok, nil
}

func (s *stubStore) Size(context.Context) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	return len(s.ids), nil
}

func (s *stubStore) IDs(context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, id := range s.ids {
			if !yield(id, nil) {
				return
			}
		}
	}
}

func (s *stubStore) Values(context.Context) iter.Seq2[fasta.Record, error] {
	return func(yield func(fasta.Record, error) bool) {
		for _, id := range s.ids {
			if !yield(s.records[id], nil) {
				return
			}
		}
	}
}

func (s *stubStore) Close() error {
	s.markClosed()
	if s.closeFn != nil {
		return s.closeFn()
	}
	return nil
}

func TestCachingServesHitsFromCache(t *testing.T) {
	ctx := context.Background()
	stub := newStub("s", "A", "B")
	c, err := NewCaching[fasta.Record](stub, 2)
	require.NoError(t, err)
	defer c.Close()

	for range 3 {
		rec, ok, err := c.Get(ctx, "A")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "s:A", rec.Sequence)
	}
	assert.Equal(t, 1, stub.gets)

	st := c.Stats()
	assert.Equal(t, int64(2), st.Hits)
	assert.Equal(t, int64(1), st.Misses)
	assert.Equal(t, 1, st.Len)
	assert.Equal(t, int64(2), st.Capacity)
}

func TestCachingDoesNotCacheMisses(t *testing.T) {
	ctx := context.Background()
	stub := newStub("s", "A")
	c, err := NewCaching[fasta.Record](stub, 4)
	require.NoError(t, err)
	defer c.Close()

	for range 3 {
		_, ok, err := c.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Equal(t, 3, stub.gets)
	assert.Zero(t, c.Stats().Len)

	stub.getErr = errors.New("boom")
	_, _, err = c.Get(ctx, "A")
	assert.Error(t, err)
	assert.Zero(t, c.Stats().Len)
}

func TestCachingCapacityOne(t *testing.T) {
	ctx := context.Background()
	stub := newStub("s", "A", "B")
	c, err := NewCaching[fasta.Record](stub, 1)
	require.NoError(t, err)
	defer c.Close()

	for _, id := range []string{"A", "B", "A", "A", "B"} {
		rec, ok, err := c.Get(ctx, id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "s:"+id, rec.Sequence)
		assert.Equal(t, 1, c.Stats().Len)
	}
	// A, B, A miss; A hits; B misses
	assert.Equal(t, 4, stub.gets)
}

func TestCachingOverRealStore(t *testing.T) {
	ctx := context.Background()
	f := newTrackedFile(fastaFile("A", "B", "C"))
	inner, err := NewIndexed(ctx, fasta.Format{}, f.open, nil)
	require.NoError(t, err)

	c, err := NewCaching[fasta.Record](inner, 8)
	require.NoError(t, err)

	for range 2 {
		rec, ok, err := c.Get(ctx, "B")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, seqOf("B", 1), rec.Sequence)
	}
	// one pass to build, one to load B
	assert.Equal(t, int32(2), f.opens.Load())

	n, err := c.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"A", "B", "C"}, collect(t, c.IDs(ctx)))

	require.NoError(t, c.Close())
	assert.True(t, inner.IsClosed())
	assert.True(t, f.balanced())

	_, _, err = c.Get(ctx, "B")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestCachingInvalidArguments(t *testing.T) {
	_, err := NewCaching[fasta.Record](newStub("s"), 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewCaching[fasta.Record](nil, 4)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
