package blobstore

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/hupe1980/desigo/internal/mmap"
)

// LocalStore reads a release tree from the local filesystem.
type LocalStore struct {
	root string
}

// NewLocalStore creates a LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Root returns the root directory of the store.
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) path(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// Open opens a product file for reading. Files are memory-mapped: FITS
// access hops between headers and far-apart data units, which suits a
// mapping far better than buffered sequential reads.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	m, err := mmap.Open(s.path(name))
	if err != nil {
		return nil, err
	}
	_ = m.Advise(mmap.AccessRandom)
	return &localBlob{m: m}, nil
}

// Stat reports existence and size.
func (s *LocalStore) Stat(_ context.Context, name string) (BlobInfo, error) {
	fi, err := os.Stat(s.path(name))
	if err != nil {
		return BlobInfo{}, err
	}
	return BlobInfo{Name: name, Size: fi.Size()}, nil
}

// List enumerates files under prefix, relative slash-separated names.
func (s *LocalStore) List(_ context.Context, prefix string) ([]string, error) {
	dir := s.path(prefix)
	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Close implements Store. Open blobs own their mappings and outlive the
// store handle.
func (s *LocalStore) Close() error { return nil }

type localBlob struct {
	m *mmap.Mapping
}

func (b *localBlob) ReadAt(p []byte, off int64) (int, error) {
	return b.m.ReadAt(p, off)
}

func (b *localBlob) Close() error { return b.m.Close() }

func (b *localBlob) Size() int64 { return b.m.Size() }

func (b *localBlob) Bytes() ([]byte, error) { return b.m.Bytes(), nil }
