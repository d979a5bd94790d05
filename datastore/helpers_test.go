package datastore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"iter"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqstore/format/fasta"
	"github.com/hupe1980/seqstore/visit"
)

func fastaFile(ids ...string) []byte {
	var buf bytes.Buffer
	for i, id := range ids {
		fmt.Fprintf(&buf, ">%s rec%d\nSEQ%s\n%d\n", id, i, id, i)
	}
	return buf.Bytes()
}

func seqOf(id string, i int) string {
	return fmt.Sprintf("SEQ%s%d", id, i)
}

// trackedFile counts views opened and closed over an in-memory file.
type trackedFile struct {
	name       string
	data       []byte
	sequential bool
	opens      atomic.Int32
	closes     atomic.Int32
}

func newTrackedFile(data []byte) *trackedFile {
	return &trackedFile{name: "test.fa", data: data}
}

func (f *trackedFile) open(context.Context) (visit.Source, io.Closer, error) {
	f.opens.Add(1)
	closer := closerFunc(func() error {
		f.closes.Add(1)
		return nil
	})
	if f.sequential {
		return visit.Sequential(f.name, bytes.NewReader(f.data)), closer, nil
	}
	return visit.Seekable(f.name, bytes.NewReader(f.data), int64(len(f.data))), closer, nil
}

func (f *trackedFile) balanced() bool {
	return f.opens.Load() == f.closes.Load()
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

type newStoreFunc func(t *testing.T, open SourceFunc, opts ...Option) DataStore[fasta.Record]

func variants() map[string]newStoreFunc {
	return map[string]newStoreFunc{
		"eager": func(t *testing.T, open SourceFunc, opts ...Option) DataStore[fasta.Record] {
			s, err := NewEager(context.Background(), fasta.Format{}, open, opts...)
			require.NoError(t, err)
			return s
		},
		"indexed-memento": func(t *testing.T, open SourceFunc, opts ...Option) DataStore[fasta.Record] {
			s, err := NewIndexed(context.Background(), fasta.Format{}, open, nil, opts...)
			require.NoError(t, err)
			return s
		},
		"indexed-range": func(t *testing.T, open SourceFunc, opts ...Option) DataStore[fasta.Record] {
			opts = append(opts, WithLookupMode(LookupRange))
			s, err := NewIndexed(context.Background(), fasta.Format{}, open, nil, opts...)
			require.NoError(t, err)
			return s
		},
		"streaming": func(t *testing.T, open SourceFunc, opts ...Option) DataStore[fasta.Record] {
			s, err := NewStreaming(fasta.Format{}, open, nil, opts...)
			require.NoError(t, err)
			return s
		},
	}
}

func collect[V any](t *testing.T, seq iter.Seq2[V, error]) []V {
	t.Helper()
	var out []V
	for v, err := range seq {
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}

func recordIDs(recs []fasta.Record) []string {
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	return ids
}
