package seqstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/seqstore"
	"github.com/hupe1980/seqstore/blobstore"
	"github.com/hupe1980/seqstore/format/fasta"
)

func TestMetricsCollector(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	require.NoError(t, mem.Put(ctx, "contigs.fa", contigs(10)))

	metrics := &seqstore.BasicMetricsCollector{}
	s, err := seqstore.Open(ctx, mem, "contigs.fa", fasta.Format{}, seqstore.WithMetricsCollector(metrics))
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, "contig1")
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	n := 0
	for _, err := range s.Values(ctx) {
		require.NoError(t, err)
		n++
		if n == 4 {
			break
		}
	}

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Zero(t, stats.BuildErrors)
	assert.Equal(t, int64(2), stats.GetCount)
	assert.Equal(t, int64(1), stats.GetMisses)
	assert.Equal(t, int64(1), stats.IterateCount)
	assert.Equal(t, int64(4), stats.IterateRecords)
	assert.Equal(t, int64(1), stats.CloseCount)
}

func TestMetricsCollectorRecordsBuildFailure(t *testing.T) {
	metrics := &seqstore.BasicMetricsCollector{}
	_, err := seqstore.Open(context.Background(), blobstore.NewMemoryStore(), "missing.fa", fasta.Format{},
		seqstore.WithMetricsCollector(metrics))
	require.Error(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(1), stats.BuildErrors)
}

func TestNoopMetricsCollector(t *testing.T) {
	var mc seqstore.MetricsCollector = seqstore.NoopMetricsCollector{}
	mc.RecordBuild(seqstore.RandomAccessEager, 0, nil)
	mc.RecordGet(0, true, nil)
	mc.RecordIterate(1, 0, nil)
	mc.RecordClose(nil)
}
