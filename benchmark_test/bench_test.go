package benchmark_test

import (
	"context"
	"testing"

	"github.com/hupe1980/seqstore"
	"github.com/hupe1980/seqstore/datastore"
	"github.com/hupe1980/seqstore/testutil"
)

func BenchmarkOpen(b *testing.B) {
	store := fixture(b)
	for _, hint := range hints {
		b.Run(hint.String(), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				s, err := seqstore.Open(context.Background(), store, "assembly.fa", fastaFormat,
					seqstore.WithProviderHint(hint))
				if err != nil {
					b.Fatal(err)
				}
				_ = s.Close()
			}
		})
	}
}

func BenchmarkGet(b *testing.B) {
	store := fixture(b)
	ids := testutil.IDs("contig", numContigs)
	ctx := context.Background()

	cases := []struct {
		name string
		opts []seqstore.Option
	}{
		{"eager", []seqstore.Option{seqstore.WithProviderHint(seqstore.RandomAccessEager)}},
		{"lazy-memento", []seqstore.Option{seqstore.WithProviderHint(seqstore.RandomAccessLazy)}},
		{"lazy-range", []seqstore.Option{
			seqstore.WithProviderHint(seqstore.RandomAccessLazy),
			seqstore.WithLookupMode(datastore.LookupRange),
		}},
	}
	for _, tc := range cases {
		b.Run(tc.name, func(b *testing.B) {
			s := open(b, store, tc.opts...)
			rng := testutil.NewRNG(42)
			b.ReportAllocs()
			for b.Loop() {
				if _, ok, err := s.Get(ctx, ids[rng.Intn(len(ids))]); err != nil || !ok {
					b.Fatal(ok, err)
				}
			}
		})
	}
}

func BenchmarkGet_ZipfCached(b *testing.B) {
	store := fixture(b)
	lookups := testutil.NewRNG(42).ZipfIDs(testutil.IDs("contig", numContigs), 100000, 1.2)
	ctx := context.Background()

	for _, size := range []int{0, 100, 1000} {
		b.Run(cacheName(size), func(b *testing.B) {
			s := open(b, store, seqstore.WithCacheSize(size))
			b.ReportAllocs()
			i := 0
			for b.Loop() {
				if _, _, err := s.Get(ctx, lookups[i%len(lookups)]); err != nil {
					b.Fatal(err)
				}
				i++
			}
		})
	}
}

func BenchmarkGet_Parallel(b *testing.B) {
	store := fixture(b)
	ids := testutil.IDs("contig", numContigs)
	s := open(b, store)
	ctx := context.Background()

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		rng := testutil.NewRNG(7)
		for pb.Next() {
			if _, _, err := s.Get(ctx, ids[rng.Intn(len(ids))]); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

func BenchmarkValues(b *testing.B) {
	store := fixture(b)
	ctx := context.Background()
	for _, hint := range hints {
		b.Run(hint.String(), func(b *testing.B) {
			s := open(b, store, seqstore.WithProviderHint(hint))
			b.ReportAllocs()
			for b.Loop() {
				n := 0
				for _, err := range s.Values(ctx) {
					if err != nil {
						b.Fatal(err)
					}
					n++
				}
				if n != numContigs {
					b.Fatalf("got %d records", n)
				}
			}
		})
	}
}

func cacheName(size int) string {
	switch size {
	case 0:
		return "nocache"
	case 100:
		return "cache100"
	default:
		return "cache1000"
	}
}
