package minio

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/hupe1980/desigo/blobstore"
	"github.com/minio/minio-go/v7"
)

// Store implements blobstore.Store for MinIO and S3-compatible storage.
type Store struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewStore creates a Store reading bucket through client. rootPrefix is
// prepended to all names.
func NewStore(client *minio.Client, bucket, rootPrefix string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
		prefix: rootPrefix,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Stat reports existence and size via StatObject.
func (s *Store) Stat(ctx context.Context, name string) (blobstore.BlobInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, s.key(name), minio.StatObjectOptions{})
	if err != nil {
		return blobstore.BlobInfo{}, translateNotFound(name, err)
	}
	return blobstore.BlobInfo{Name: name, Size: info.Size}, nil
}

// Open opens a product file for reading.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	info, err := s.Stat(ctx, name)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, translateNotFound(name, err)
	}

	return &minioBlob{obj: obj, size: info.Size}, nil
}

// List enumerates file names under prefix, relative to the store root.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := s.key(prefix)

	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    fullPrefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(obj.Key, s.prefix)
		name = strings.TrimPrefix(name, "/")
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Download fetches a whole product to a local path.
func (s *Store) Download(ctx context.Context, name, localPath string) error {
	err := s.client.FGetObject(ctx, s.bucket, s.key(name), localPath, minio.GetObjectOptions{})
	if err != nil {
		return translateNotFound(name, err)
	}
	return nil
}

// Close implements blobstore.Store.
func (s *Store) Close() error { return nil }

func translateNotFound(name string, err error) error {
	errResp := minio.ToErrorResponse(err)
	if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
		return fmt.Errorf("%s: %w", name, blobstore.ErrNotFound)
	}
	return err
}

// minioBlob delegates to minio.Object, which performs ranged requests.
type minioBlob struct {
	obj  *minio.Object
	size int64
}

func (b *minioBlob) ReadAt(p []byte, off int64) (int, error) {
	return b.obj.ReadAt(p, off)
}

func (b *minioBlob) Close() error { return b.obj.Close() }

func (b *minioBlob) Size() int64 { return b.size }
