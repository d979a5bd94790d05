// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("assemblies/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	contigs, err := seqstore.Open(ctx, store, "run42/contigs.fa", fasta.Format{})
//
// # Features
//
//   - Ranged GETs for random access (index lookups)
//   - Parallel part downloads (feature/s3/manager) for whole-object reads
//     below a configurable size
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
