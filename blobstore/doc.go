// Package blobstore provides read-only access to the immutable files of a
// spectroscopic data release.
//
// Store is the interface the archive reads through. Implementations must be
// safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: release tree on the local filesystem, memory-mapped reads
//   - HTTPStore: public HTTPS mirror, ranged requests with rate limiting
//   - s3.Store: S3 mirror with ranged reads and parallel whole-file download
//   - minio.Store: any S3-compatible endpoint via the MinIO client
//   - MemoryStore: in-memory files for tests
//   - CachingStore: block cache (optionally compressed) over any Store
//
// # Custom Implementations
//
// Implement the Store interface to read a release from elsewhere:
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)     // open one product file
//	    Stat(ctx, name) (BlobInfo, error) // existence and size
//	    Close() error
//	}
//
// Names are slash-separated paths relative to the release root, e.g.
// "fuji/tiles/80605/20210205/coadd-0-80605-20210205.fits". Stores that can
// enumerate files additionally implement Lister.
package blobstore
