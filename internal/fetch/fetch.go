// Package fetch opens remote http(s) sources so they can be uploaded
// without a local copy.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// DefaultResponseHeaderTimeout is the default timeout for receiving response headers.
const DefaultResponseHeaderTimeout = 30 * time.Second

// ErrNoName is returned when a URL path has no last element to name the
// chunk set after.
var ErrNoName = errors.New("fetch: cannot derive a name from URL")

// Fetcher opens http(s) URLs.
type Fetcher struct {
	client *http.Client
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithTimeout bounds the whole request, body included.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.client = &http.Client{
			Timeout: timeout,
		}
	}
}

// New creates a Fetcher with sensible defaults.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: 0, // Bodies may be large; only the header wait is bounded.
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IsURL reports whether s names an http(s) source rather than a local path.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Name returns the last element of the URL path, unescaped.
func Name(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL: %w", err)
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." || name == "" {
		return "", fmt.Errorf("%w: %s", ErrNoName, rawURL)
	}
	return name, nil
}

// Open starts a GET request for rawURL and returns the response body and
// its length, or -1 when the server does not announce one. The caller
// closes the body.
func (f *Fetcher) Open(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	return resp.Body, resp.ContentLength, nil
}
