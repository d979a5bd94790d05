// Package testutil provides testing utilities for seqstore.
//
// This package is intended for use in tests and benchmarks only.
// It generates reproducible synthetic sequence files and skewed access
// patterns.
//
// # Synthetic Files
//
//	rng := testutil.NewRNG(seed)
//	fa := rng.FASTA(1000, 500, 60)   // 1000 contigs of 500 bases, 60 per line
//	fq := rng.FASTQ(1000, 150)       // 1000 reads of 150 bases
//	ids := testutil.IDs("contig", 1000)
//
// # Access Patterns
//
//	hot := rng.ZipfIDs(ids, 10000, 1.2) // power-law lookups over ids
package testutil
