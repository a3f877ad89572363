package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// HTTPStore reads a release from a public HTTPS mirror using ranged
// requests. Survey mirrors are shared infrastructure, so requests are rate
// limited and the number in flight is bounded.
type HTTPStore struct {
	base    *url.URL
	client  *http.Client
	limiter *rate.Limiter
	sem     *semaphore.Weighted
}

// HTTPOption configures an HTTPStore.
type HTTPOption func(*HTTPStore)

// WithHTTPClient sets the HTTP client, e.g. to configure timeouts or
// transport reuse. Defaults to http.DefaultClient.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(s *HTTPStore) {
		if c != nil {
			s.client = c
		}
	}
}

// WithRateLimit caps the request rate against the mirror.
// Defaults to 16 requests per second with a burst of 32.
func WithRateLimit(rps float64, burst int) HTTPOption {
	return func(s *HTTPStore) {
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxInflight bounds concurrent requests. Defaults to 8.
func WithMaxInflight(n int64) HTTPOption {
	return func(s *HTTPStore) {
		s.sem = semaphore.NewWeighted(n)
	}
}

// NewHTTPStore creates a store reading from baseURL, e.g.
// "https://data.example.org/public/edr/spectro/redux".
func NewHTTPStore(baseURL string, opts ...HTTPOption) (*HTTPStore, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("blobstore: parse base url: %w", err)
	}

	s := &HTTPStore{
		base:    u,
		client:  http.DefaultClient,
		limiter: rate.NewLimiter(rate.Limit(16), 32),
		sem:     semaphore.NewWeighted(8),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *HTTPStore) fileURL(name string) string {
	u := *s.base
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + name
	return u.String()
}

func (s *HTTPStore) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	s.sem.Release(1)
	return resp, err
}

// Stat issues a HEAD request.
func (s *HTTPStore) Stat(ctx context.Context, name string) (BlobInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.fileURL(name), nil)
	if err != nil {
		return BlobInfo{}, err
	}

	resp, err := s.do(ctx, req)
	if err != nil {
		return BlobInfo{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return BlobInfo{}, fmt.Errorf("%s: %w", name, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return BlobInfo{}, fmt.Errorf("blobstore: HEAD %s: unexpected status %s", name, resp.Status)
	}

	return BlobInfo{Name: name, Size: resp.ContentLength}, nil
}

// Open verifies the file and returns a Blob issuing ranged GETs.
func (s *HTTPStore) Open(ctx context.Context, name string) (Blob, error) {
	info, err := s.Stat(ctx, name)
	if err != nil {
		return nil, err
	}
	if info.Size < 0 {
		return nil, fmt.Errorf("blobstore: %s: mirror does not report a size", name)
	}
	return &httpBlob{store: s, name: name, size: info.Size}, nil
}

// Close releases idle connections.
func (s *HTTPStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

type httpBlob struct {
	store *HTTPStore
	name  string
	size  int64
}

func (b *httpBlob) Size() int64 { return b.size }

func (b *httpBlob) Close() error { return nil }

func (b *httpBlob) ReadAt(p []byte, off int64) (int, error) {
	if off >= b.size {
		return 0, io.EOF
	}
	end := off + int64(len(p)) - 1
	if end >= b.size {
		end = b.size - 1
	}

	req, err := http.NewRequest(http.MethodGet, b.store.fileURL(b.name), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", off, end))

	resp, err := b.store.do(context.Background(), req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	body := resp.Body
	switch resp.StatusCode {
	case http.StatusPartialContent:
		// Ranged response, read as-is.
	case http.StatusOK:
		// Mirror ignored the range header. Discard the skipped prefix.
		if _, err := io.CopyN(io.Discard, body, off); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("blobstore: GET %s: unexpected status %s", b.name, resp.Status)
	}

	n, err := io.ReadFull(body, p)
	switch err {
	case nil:
		return n, nil
	case io.EOF, io.ErrUnexpectedEOF:
		if off+int64(n) >= b.size {
			return n, io.EOF
		}
		return n, io.ErrUnexpectedEOF
	default:
		return n, err
	}
}
