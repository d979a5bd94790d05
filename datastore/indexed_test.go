package datastore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqstore/format/fasta"
	"github.com/hupe1980/seqstore/visit"
)

func buildIndex(t *testing.T, data []byte, filter Filter, policy DuplicatePolicy) *index {
	t.Helper()
	src := visit.Seekable("idx.fa", bytes.NewReader(data), int64(len(data)))
	b := newIndexBuilder(filter, policy, src.Size())
	require.NoError(t, fasta.Format{}.NewParser(src).Parse(context.Background(), b))
	idx, err := b.result()
	require.NoError(t, err)
	return idx
}

func TestIndexRangesCoverRecords(t *testing.T) {
	data := fastaFile("A", "B", "C")
	idx := buildIndex(t, data, ExcludeIDs("B"), LastWins)

	assert.Equal(t, []string{"A", "C"}, idx.order)
	assert.Equal(t, uint32(3), idx.records)
	assert.Equal(t, 2, idx.live.Len())
	assert.True(t, idx.live.Contains(0))
	assert.False(t, idx.live.Contains(1))
	assert.True(t, idx.live.Contains(2))

	// A ends where the rejected B starts; C runs to the end of the file
	a, c := idx.entries["A"], idx.entries["C"]
	assert.Equal(t, int64(0), a.rng.Start)
	assert.Equal(t, fastaFile("A"), data[a.rng.Start:a.rng.End()])
	assert.Equal(t, int64(len(data)), c.rng.End())
	assert.True(t, bytes.HasPrefix(data[c.rng.Start:], []byte(">C ")))
}

func TestMementoRoundTrip(t *testing.T) {
	data := fastaFile("A", "B", "C", "D")
	idx := buildIndex(t, data, nil, LastWins)
	ctx := context.Background()

	for _, id := range idx.order {
		e := idx.entries[id]
		src := visit.Seekable("idx.fa", bytes.NewReader(data), int64(len(data)))
		v := &lookupVisitor[fasta.Record]{format: fasta.Format{}, want: id}
		require.NoError(t, fasta.Format{}.NewParser(src).ParseFrom(ctx, v, e.memento))
		assert.True(t, v.found)
		assert.Equal(t, id, v.rec.ID)
	}
}

func TestIndexedValuesAcrossBatches(t *testing.T) {
	n := valuesBatch*2 + 17
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("r%04d", i)
	}
	data := fastaFile(ids...)
	ctx := context.Background()

	// drop every third record so runs have to skip dead ordinals
	filter := func(id string) bool {
		var i int
		_, _ = fmt.Sscanf(id, "r%d", &i)
		return i%3 != 0
	}

	f := newTrackedFile(data)
	s, err := NewIndexed(ctx, fasta.Format{}, f.open, nil, WithFilter(filter))
	require.NoError(t, err)
	defer s.Close()

	recs := collect(t, s.Values(ctx))
	var want []string
	for i, id := range ids {
		if i%3 != 0 {
			want = append(want, id)
		}
	}
	assert.Equal(t, want, recordIDs(recs))
	for _, r := range recs {
		var i int
		_, _ = fmt.Sscanf(r.ID, "r%d", &i)
		assert.Equal(t, seqOf(r.ID, i), r.Sequence)
	}

	// build pass plus one resumed pass per batch
	batches := (len(want) + valuesBatch - 1) / valuesBatch
	assert.Equal(t, int32(1+batches), f.opens.Load())
	assert.True(t, f.balanced())
}

func TestIndexedValuesEarlyBreak(t *testing.T) {
	ctx := context.Background()
	f := newTrackedFile(manyRecords(50))
	s, err := NewIndexed(ctx, fasta.Format{}, f.open, nil)
	require.NoError(t, err)
	defer s.Close()

	n := 0
	for range s.Values(ctx) {
		n++
		if n == 5 {
			break
		}
	}
	assert.Equal(t, 5, n)
	assert.True(t, f.balanced())
}

func TestIndexedDetectsChangedSource(t *testing.T) {
	ctx := context.Background()
	original := fastaFile("A", "B", "C")
	changed := fastaFile("A", "X", "C")
	calls := 0
	open := func(context.Context) (visit.Source, io.Closer, error) {
		calls++
		data := original
		if calls > 1 {
			data = changed
		}
		return visit.Seekable("drift.fa", bytes.NewReader(data), int64(len(data))), io.NopCloser(nil), nil
	}

	s, err := NewIndexed(ctx, fasta.Format{}, open, nil)
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.Get(ctx, "B")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "drift.fa", pe.Source)

	for _, err := range s.Values(ctx) {
		if err != nil {
			assert.ErrorIs(t, err, ErrParse)
		}
	}
}

func TestIndexedRequiresSeekableSource(t *testing.T) {
	f := newTrackedFile(fastaFile("A"))
	f.sequential = true
	released := 0
	release := closerFunc(func() error {
		released++
		return nil
	})

	_, err := NewIndexed(context.Background(), fasta.Format{}, f.open, release)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 1, released)
	assert.True(t, f.balanced())
}

func TestIndexedCloseReleasesFile(t *testing.T) {
	released := 0
	release := closerFunc(func() error {
		released++
		return nil
	})
	s, err := NewIndexed(context.Background(), fasta.Format{}, BytesSource("a.fa", fastaFile("A")), release)
	require.NoError(t, err)
	assert.Zero(t, released)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.Equal(t, 1, released)
}

func TestIndexedGetReadsOneRecord(t *testing.T) {
	// the record after B is malformed; a lookup of B halts before it
	data := []byte(">A\nAAAA\n>B\nCCCC\n>\nGGGG\n")
	ctx := context.Background()

	idx := buildIndexAllowingError(t, data)
	require.Contains(t, idx.entries, "B")

	src := visit.Seekable("halt.fa", bytes.NewReader(data), int64(len(data)))
	v := &lookupVisitor[fasta.Record]{format: fasta.Format{}, want: "B"}
	require.NoError(t, fasta.Format{}.NewParser(src).ParseFrom(ctx, v, idx.entries["B"].memento))
	assert.True(t, v.found)
	assert.Equal(t, "CCCC", v.rec.Sequence)
}

// buildIndexAllowingError indexes the valid prefix of a file.
func buildIndexAllowingError(t *testing.T, data []byte) *index {
	t.Helper()
	src := visit.Seekable("halt.fa", bytes.NewReader(data), int64(len(data)))
	b := newIndexBuilder(nil, LastWins, src.Size())
	err := fasta.Format{}.NewParser(src).Parse(context.Background(), b)
	require.Error(t, err)
	return b.idx
}
