package gcsstore

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/arman-k/stegdrive/internal/store"
	"github.com/arman-k/stegdrive/internal/store/storetest"
)

// fakeBucket mimics a GCS bucket listing with a "/" delimiter.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (b *fakeBucket) write(ctx context.Context, key string, data []byte, contentType string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = append([]byte(nil), data...)
	b.types[key] = contentType
	return nil
}

func (b *fakeBucket) read(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return data, nil
}

func (b *fakeBucket) delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[key]; !ok {
		return store.ErrNotFound
	}
	delete(b.objects, key)
	return nil
}

func (b *fakeBucket) list(ctx context.Context, prefix string) ([]entry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	seen := make(map[string]bool)
	var entries []entry
	for key, data := range b.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			p := prefix + rest[:i+1]
			if !seen[p] {
				seen[p] = true
				entries = append(entries, entry{prefix: p})
			}
			continue
		}
		entries = append(entries, entry{name: key, size: int64(len(data))})
	}
	return entries, nil
}

func newTestStore(b *fakeBucket, prefix string) *Store {
	s := &Store{bucket: b}
	WithPrefix(prefix)(s)
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return newTestStore(newFakeBucket(), "stegdrive")
	})
}

func TestStore_Keys(t *testing.T) {
	b := newFakeBucket()
	s := newTestStore(b, "data/v1/")

	if _, err := s.Create(context.Background(), "photo.jpg", "photo.jpg1", []byte("doc")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := s.Create(context.Background(), "photo.jpg", "manifest.json", []byte("{}")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, ok := b.objects["data/v1/photo.jpg/photo.jpg1"]; !ok {
		t.Errorf("objects = %v, want key data/v1/photo.jpg/photo.jpg1", b.objects)
	}
	if got := b.types["data/v1/photo.jpg/manifest.json"]; got != "application/json" {
		t.Errorf("manifest content type = %q", got)
	}
}

func TestWithPrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"prefix", "prefix/"},
		{"prefix/", "prefix/"},
		{"a/b/c", "a/b/c/"},
		{"a/b/c/", "a/b/c/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := &Store{}
			opt := WithPrefix(tt.input)
			opt(s)
			if s.prefix != tt.want {
				t.Errorf("prefix = %q, want %q", s.prefix, tt.want)
			}
		})
	}
}

func TestWithEndpoint(t *testing.T) {
	s := &Store{}
	WithEndpoint("http://localhost:4443/storage/v1/")(s)
	if len(s.clientOpts) != 2 {
		t.Errorf("clientOpts = %d, want 2", len(s.clientOpts))
	}
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url     string
		bucket  string
		prefix  string
		wantErr bool
	}{
		{"gs://my-bucket", "my-bucket", "", false},
		{"gs://my-bucket/", "my-bucket", "", false},
		{"gs://my-bucket/path/to/data", "my-bucket", "path/to/data", false},
		{"gs://my-bucket/path/to/data/", "my-bucket", "path/to/data", false},
		{"s3://my-bucket", "", "", true},
		{"gs://", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			bucket, prefix, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if bucket != tt.bucket || prefix != tt.prefix {
				t.Errorf("ParseURL() = %q, %q, want %q, %q", bucket, prefix, tt.bucket, tt.prefix)
			}
		})
	}
}

func TestStore_CloseWithoutClient(t *testing.T) {
	s := &Store{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
