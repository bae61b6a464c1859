// Package gcsstore implements a Google Cloud Storage backend.
//
// Objects are stored under <prefix><parent>/<name>. Folders are object name
// prefixes and are listed with a "/" delimiter.
package gcsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/arman-k/stegdrive/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a Google Cloud Storage backend.
type Store struct {
	client     *storage.Client
	bucket     bucket
	prefix     string
	clientOpts []option.ClientOption
}

// New creates a new GCS store.
// The bucket must already exist.
func New(ctx context.Context, bucketName string, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, opt := range opts {
		opt(s)
	}

	client, err := storage.NewClient(ctx, s.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating GCS client: %w", err)
	}
	s.client = client
	s.bucket = &gcsBucket{h: client.Bucket(bucketName)}

	return s, nil
}

// NewFromURL creates a store from a "gs://bucket/prefix" URL.
func NewFromURL(ctx context.Context, url string, opts ...Option) (*Store, error) {
	bucket, prefix, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	return New(ctx, bucket, append([]Option{WithPrefix(prefix)}, opts...)...)
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
	}
}

// WithEndpoint points the client at a storage emulator. Requests are sent
// without authentication.
func WithEndpoint(endpoint string) Option {
	return func(s *Store) {
		s.clientOpts = append(s.clientOpts, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}
}

// WithClientOptions passes options through to storage.NewClient.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(s *Store) {
		s.clientOpts = append(s.clientOpts, opts...)
	}
}

// ParseURL parses "gs://bucket/prefix" into bucket and prefix.
func ParseURL(url string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(url, "gs://") {
		return "", "", fmt.Errorf("invalid GCS path: must start with gs://")
	}

	path := strings.TrimPrefix(url, "gs://")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 || parts[0] == "" {
		return "", "", fmt.Errorf("invalid GCS path: missing bucket name")
	}

	bucket = parts[0]
	if len(parts) > 1 {
		prefix = strings.TrimSuffix(parts[1], "/")
	}
	return bucket, prefix, nil
}

// Create uploads content as a single object.
func (s *Store) Create(ctx context.Context, parent, name string, content []byte) (store.Object, error) {
	if err := ctx.Err(); err != nil {
		return store.Object{}, err
	}
	if err := store.CheckCreate(parent, name); err != nil {
		return store.Object{}, err
	}

	id := store.Join(parent, name)
	if err := s.bucket.write(ctx, s.key(id), content, contentType(name)); err != nil {
		return store.Object{}, err
	}
	return store.Object{Name: name, ID: id, Size: int64(len(content))}, nil
}

// List returns the folder prefixes under the store prefix, or the objects
// under parent.
func (s *Store) List(ctx context.Context, parent string) ([]store.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := s.prefix
	if parent != "" {
		if err := store.ValidateName(parent); err != nil {
			return nil, err
		}
		prefix += parent + "/"
	}

	entries, err := s.bucket.list(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var objs []store.Object
	for _, e := range entries {
		switch {
		case parent == "" && e.prefix != "":
			name := strings.TrimSuffix(strings.TrimPrefix(e.prefix, prefix), "/")
			if store.ValidateName(name) == nil {
				objs = append(objs, store.Object{Name: name, ID: name})
			}
		case parent != "" && e.prefix == "":
			name := strings.TrimPrefix(e.name, prefix)
			if store.ValidateName(name) == nil {
				objs = append(objs, store.Object{Name: name, ID: store.Join(parent, name), Size: e.size})
			}
		}
	}

	sort.Slice(objs, func(i, j int) bool { return objs[i].Name < objs[j].Name })
	return objs, nil
}

// Fetch downloads the content of an object.
func (s *Store) Fetch(ctx context.Context, id string) ([]byte, error) {
	// Check for cancellation before starting.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, _, err := store.Split(id); err != nil {
		return nil, err
	}
	return s.bucket.read(ctx, s.key(id))
}

// Delete removes an object.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := store.Split(id); err != nil {
		return err
	}
	return s.bucket.delete(ctx, s.key(id))
}

// Close releases resources.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// key returns the full object name for an object ID.
func (s *Store) key(id string) string {
	return s.prefix + id
}

func contentType(name string) string {
	if strings.HasSuffix(name, ".json") {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

// entry is one listing result: an object, or a synthetic folder prefix.
type entry struct {
	name   string
	prefix string
	size   int64
}

type bucket interface {
	write(ctx context.Context, key string, data []byte, contentType string) error
	read(ctx context.Context, key string) ([]byte, error)
	delete(ctx context.Context, key string) error
	list(ctx context.Context, prefix string) ([]entry, error)
}

type gcsBucket struct {
	h *storage.BucketHandle
}

func (b *gcsBucket) write(ctx context.Context, key string, data []byte, contentType string) error {
	w := b.h.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("writing object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing object writer: %w", err)
	}
	return nil
}

func (b *gcsBucket) read(ctx context.Context, key string) ([]byte, error) {
	reader, err := b.h.Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("creating reader: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading object: %w", err)
	}
	return data, nil
}

func (b *gcsBucket) delete(ctx context.Context, key string) error {
	if err := b.h.Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return store.ErrNotFound
		}
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

func (b *gcsBucket) list(ctx context.Context, prefix string) ([]entry, error) {
	var entries []entry
	it := b.h.Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}
		entries = append(entries, entry{name: attrs.Name, prefix: attrs.Prefix, size: attrs.Size})
	}
	return entries, nil
}
