package blobstore

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/hupe1980/desigo/internal/blockcache"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/sync/singleflight"
)

// Compression selects how cached blocks are stored.
type Compression uint8

const (
	// CompressionNone stores blocks as read.
	CompressionNone Compression = iota
	// CompressionLZ4 trades a little CPU per hit for a larger effective
	// cache. Good default for remote stores.
	CompressionLZ4
	// CompressionZstd compresses harder; for slow links and cold data.
	CompressionZstd
)

const (
	blockRaw  = 0x00
	blockLZ4  = 0x01
	blockZstd = 0x02
)

// Encoder/decoder pools, shared across caching stores.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// CachingStore wraps a Store with a block-level read cache. Product files
// are immutable, so cached blocks never go stale. A FITS read touches the
// same header and data blocks repeatedly; against a remote mirror the cache
// turns that into one fetch per block.
type CachingStore struct {
	inner       Store
	cache       *blockcache.LRU
	blockSize   int64
	compression Compression
	flight      singleflight.Group
}

// CachingOption configures a CachingStore.
type CachingOption func(*CachingStore)

// WithBlockSize sets the cache block size in bytes. Defaults to 1 MiB.
func WithBlockSize(n int64) CachingOption {
	return func(s *CachingStore) {
		if n > 0 {
			s.blockSize = n
		}
	}
}

// WithCompression sets how cached blocks are stored. Defaults to
// CompressionNone.
func WithCompression(c Compression) CachingOption {
	return func(s *CachingStore) { s.compression = c }
}

// NewCachingStore creates a caching wrapper around inner holding at most
// capacity bytes of (possibly compressed) block data.
func NewCachingStore(inner Store, capacity int64, opts ...CachingOption) *CachingStore {
	s := &CachingStore{
		inner:     inner,
		cache:     blockcache.NewLRU(capacity),
		blockSize: 1 << 20,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens a product file whose reads go through the block cache.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{store: s, inner: b, name: name}, nil
}

// Stat passes through to the inner store.
func (s *CachingStore) Stat(ctx context.Context, name string) (BlobInfo, error) {
	return s.inner.Stat(ctx, name)
}

// List passes through when the inner store supports listing.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	if l, ok := s.inner.(Lister); ok {
		return l.List(ctx, prefix)
	}
	return nil, fmt.Errorf("blobstore: inner store cannot list")
}

// Close closes the inner store.
func (s *CachingStore) Close() error { return s.inner.Close() }

// CacheStats returns cumulative block cache hits and misses.
func (s *CachingStore) CacheStats() (hits, misses int64) { return s.cache.Stats() }

type cachingBlob struct {
	store *CachingStore
	inner Blob
	name  string
}

func (b *cachingBlob) Size() int64 { return b.inner.Size() }

func (b *cachingBlob) Close() error { return b.inner.Close() }

func (b *cachingBlob) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	size := b.inner.Size()
	if off < 0 || off >= size {
		return 0, io.EOF
	}

	readable := int64(len(p))
	if off+readable > size {
		readable = size - off
	}

	bs := b.store.blockSize
	var n int64
	for n < readable {
		idx := (off + n) / bs
		block, err := b.block(uint32(idx))
		if err != nil {
			return int(n), err
		}
		within := (off + n) - idx*bs
		n += int64(copy(p[n:readable], block[within:]))
	}

	if readable < int64(len(p)) {
		return int(n), io.EOF
	}
	return int(n), nil
}

// block returns the raw bytes of block idx, fetching and caching on miss.
// Concurrent misses of the same block collapse into one inner read.
func (b *cachingBlob) block(idx uint32) ([]byte, error) {
	key := blockcache.Key{Name: b.name, Block: idx}
	rawLen := b.rawLen(idx)

	if enc, ok := b.store.cache.Get(key); ok {
		return decodeBlock(enc, rawLen)
	}

	v, err, _ := b.store.flight.Do(fmt.Sprintf("%s#%d", b.name, idx), func() (interface{}, error) {
		raw := make([]byte, rawLen)
		if _, err := b.inner.ReadAt(raw, int64(idx)*b.store.blockSize); err != nil && err != io.EOF {
			return nil, err
		}
		b.store.cache.Set(key, encodeBlock(raw, b.store.compression))
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (b *cachingBlob) rawLen(idx uint32) int {
	bs := b.store.blockSize
	rem := b.inner.Size() - int64(idx)*bs
	if rem > bs {
		rem = bs
	}
	return int(rem)
}

func encodeBlock(raw []byte, c Compression) []byte {
	switch c {
	case CompressionLZ4:
		dst := make([]byte, 1+lz4.CompressBlockBound(len(raw)))
		dst[0] = blockLZ4
		n, err := lz4.CompressBlock(raw, dst[1:], nil)
		if err != nil || n == 0 || n >= len(raw) {
			break // incompressible, fall through to raw
		}
		return dst[:1+n]

	case CompressionZstd:
		enc := getZstdEncoder()
		dst := enc.EncodeAll(raw, []byte{blockZstd})
		zstdEncoderPool.Put(enc)
		if len(dst) < 1+len(raw) {
			return dst
		}
	}

	dst := make([]byte, 1+len(raw))
	dst[0] = blockRaw
	copy(dst[1:], raw)
	return dst
}

func decodeBlock(enc []byte, rawLen int) ([]byte, error) {
	if len(enc) == 0 {
		return nil, fmt.Errorf("blobstore: empty cached block")
	}
	switch enc[0] {
	case blockRaw:
		return enc[1:], nil

	case blockLZ4:
		dst := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(enc[1:], dst)
		if err != nil {
			return nil, err
		}
		return dst[:n], nil

	case blockZstd:
		dec := getZstdDecoder()
		dst, err := dec.DecodeAll(enc[1:], nil)
		zstdDecoderPool.Put(dec)
		return dst, err

	default:
		return nil, fmt.Errorf("blobstore: unknown block encoding 0x%02x", enc[0])
	}
}
