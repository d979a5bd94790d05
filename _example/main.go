package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hupe1980/seqstore"
	"github.com/hupe1980/seqstore/blobstore"
	"github.com/hupe1980/seqstore/format/fastq"
	"github.com/hupe1980/seqstore/testutil"
)

func main() {
	seed := int64(4711)
	size := 50000
	readLen := 150

	rng := testutil.NewRNG(seed)
	store := blobstore.NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "reads.fq", rng.FASTQ(size, readLen)); err != nil {
		log.Fatal(err)
	}

	lookups := rng.ZipfIDs(testutil.IDs("read", size), 10000, 1.1)

	fmt.Println("Reads:", size)
	fmt.Println("Read length:", readLen)

	for _, hint := range []seqstore.ProviderHint{
		seqstore.RandomAccessEager,
		seqstore.RandomAccessLazy,
		seqstore.IterationOnly,
	} {
		fmt.Printf("\n--- %s ---\n", hint)

		start := time.Now()
		s, err := seqstore.Open(ctx, store, "reads.fq", fastq.Format{}, seqstore.WithProviderHint(hint))
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Open: %s\n", time.Since(start))

		start = time.Now()
		var total float64
		var n int
		for rec, err := range s.Values(ctx) {
			if err != nil {
				log.Fatal(err)
			}
			total += rec.MeanQuality()
			n++
		}
		fmt.Printf("Scan: %s (mean quality %.2f)\n", time.Since(start), total/float64(n))

		if hint != seqstore.IterationOnly {
			start = time.Now()
			for _, id := range lookups {
				if _, _, err := s.Get(ctx, id); err != nil {
					log.Fatal(err)
				}
			}
			elapsed := time.Since(start)
			fmt.Printf("Get: %s for %d lookups (%s/op)\n", elapsed, len(lookups), elapsed/time.Duration(len(lookups)))
		}

		if err := s.Close(); err != nil {
			log.Fatal(err)
		}
	}
}
