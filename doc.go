// Package seqstore opens record-oriented flat files (FASTA, FASTQ, JSON
// Lines and any other visit.Format) as keyed, randomly accessible,
// closeable collections.
//
// # Quick Start
//
//	ctx := context.Background()
//	store := blobstore.NewLocalStore("./data")
//	contigs, err := seqstore.Open(ctx, store, "assembly.fa", fasta.Format{},
//	    seqstore.WithProviderHint(seqstore.RandomAccessLazy),
//	    seqstore.WithCacheSize(1024),
//	)
//	if err != nil { ... }
//	defer contigs.Close()
//
//	rec, ok, err := contigs.Get(ctx, "contig42")
//
// # Provider Hints
//
// The hint trades memory for I/O without changing the observable records:
//
//   - RandomAccessEager: parse once, keep every record in memory.
//   - RandomAccessLazy: parse once, keep only an id index; Get re-reads one
//     record. This is the default.
//   - IterationOnly: keep nothing; iteration streams the file, lookups
//     scan it.
//
// Compressed sources (.gz, .zst, .lz4, .br) cannot be read at random
// offsets, so RandomAccessLazy falls back to RandomAccessEager for them.
//
// # Backing Sources
//
// Files come from a blobstore.BlobStore: the local file system (memory
// mapped), memory, S3 (blobstore/s3) or MinIO (blobstore/minio). Remote
// stores can be fronted by blobstore.NewCachingStore for block caching.
//
// # Several Files
//
// OpenComposite and OpenPrefix put one store per file behind a
// datastore.Composite; Get answers from the first file that holds the id.
package seqstore
