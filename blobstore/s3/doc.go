// Package s3 provides a blobstore.Store reading a data release mirrored on
// Amazon S3.
//
// Spectra products are large and reads are sparse, so Blob reads map to
// ranged GetObject calls. Whole-file fetches (e.g. seeding a local cache)
// use the transfer manager for parallel part downloads.
//
// Public mirrors need no credentials:
//
//	store, err := s3.NewPublicStore(ctx, "my-mirror-bucket", "spectro/redux")
//
// For private buckets, construct a client from your own AWS config and use
// NewStore.
package s3
