package benchmark_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/seqstore"
	"github.com/hupe1980/seqstore/blobstore"
	"github.com/hupe1980/seqstore/format/fasta"
	"github.com/hupe1980/seqstore/testutil"
)

const (
	numContigs = 10000
	contigLen  = 300
	lineWidth  = 60
)

var hints = []seqstore.ProviderHint{
	seqstore.RandomAccessEager,
	seqstore.RandomAccessLazy,
	seqstore.IterationOnly,
}

var fastaFormat = fasta.Format{}

// fixture writes the benchmark assembly to a temp dir and returns a local
// store over it.
func fixture(b *testing.B) *blobstore.LocalStore {
	b.Helper()
	dir := b.TempDir()
	data := testutil.NewRNG(4711).FASTA(numContigs, contigLen, lineWidth)
	if err := os.WriteFile(filepath.Join(dir, "assembly.fa"), data, 0o600); err != nil {
		b.Fatal(err)
	}
	return blobstore.NewLocalStore(dir)
}

func open(b *testing.B, store blobstore.BlobStore, opts ...seqstore.Option) seqstore.DataStore[fasta.Record] {
	b.Helper()
	s, err := seqstore.Open(context.Background(), store, "assembly.fa", fasta.Format{}, opts...)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = s.Close() })
	return s
}
