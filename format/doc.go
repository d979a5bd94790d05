// Package format groups the reference record grammars shipped with
// seqstore. Each subpackage implements visit.Format for one line-oriented
// file type:
//
//   - fasta: named sequences (contigs, references)
//   - fastq: base-call reads with per-base qualities
//   - jsonl: one JSON document per line (annotations, read placements)
package format
