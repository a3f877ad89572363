package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a product file does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is read-only access to the file tree of a data release.
type Store interface {
	// Open opens a product file for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Stat reports existence and size without opening the file.
	Stat(ctx context.Context, name string) (BlobInfo, error)
	// Close releases resources held by the store.
	Close() error
}

// BlobInfo describes a stored file.
type BlobInfo struct {
	Name string
	Size int64
}

// Blob is a read-only handle to one product file.
type Blob interface {
	io.ReaderAt
	io.Closer
	// Size returns the size of the file in bytes.
	Size() int64
}

// Mappable is an optional interface for Blobs whose content is addressable
// as one byte slice.
type Mappable interface {
	// Bytes returns the underlying byte slice. The slice is valid until the
	// Blob is closed. This is a zero-copy operation if supported.
	Bytes() ([]byte, error)
}

// Lister is an optional interface for stores that can enumerate files under
// a slash-separated prefix.
type Lister interface {
	List(ctx context.Context, prefix string) ([]string, error)
}
