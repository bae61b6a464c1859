// Package s3store implements an AWS S3 storage backend.
//
// Objects are stored under <prefix><parent>/<name>. Folders are key prefixes
// and are listed with a "/" delimiter.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/arman-k/stegdrive/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// API is the subset of the S3 client used by Store.
type API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	s3.ListObjectsV2APIClient
}

// Compile-time check that the SDK client satisfies API.
var _ API = (*s3.Client)(nil)

// Store is an AWS S3 storage backend.
type Store struct {
	client API
	bucket string
	prefix string
}

// New creates a new S3 store.
// The bucket must already exist.
func New(ctx context.Context, bucketName string, opts ...Option) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	s := &Store{
		client: s3.NewFromConfig(cfg),
		bucket: bucketName,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Option configures a Store.
type Option func(*Store) error

// WithPrefix sets a key prefix for all operations.
func WithPrefix(prefix string) Option {
	return func(s *Store) error {
		s.prefix = strings.TrimSuffix(prefix, "/")
		if s.prefix != "" {
			s.prefix += "/"
		}
		return nil
	}
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(s *Store) error {
		cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
		if err != nil {
			return fmt.Errorf("loading AWS config with region: %w", err)
		}
		s.client = s3.NewFromConfig(cfg)
		return nil
	}
}

// WithEndpoint sets a custom endpoint (for S3-compatible services like MinIO).
func WithEndpoint(endpoint string) Option {
	return func(s *Store) error {
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			return fmt.Errorf("loading AWS config for endpoint: %w", err)
		}
		s.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
		return nil
	}
}

// WithClient replaces the S3 client.
func WithClient(client API) Option {
	return func(s *Store) error {
		s.client = client
		return nil
	}
}

// ParseURL parses "s3://bucket/prefix" into bucket and prefix.
func ParseURL(url string) (bucket, prefix string, err error) {
	if !strings.HasPrefix(url, "s3://") {
		return "", "", fmt.Errorf("invalid S3 URL: must start with s3://")
	}
	bucket, prefix, _ = strings.Cut(strings.TrimPrefix(url, "s3://"), "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid S3 URL: missing bucket name")
	}
	return bucket, prefix, nil
}

// Create uploads content with a single PutObject.
func (s *Store) Create(ctx context.Context, parent, name string, content []byte) (store.Object, error) {
	if err := ctx.Err(); err != nil {
		return store.Object{}, err
	}
	if err := store.CheckCreate(parent, name); err != nil {
		return store.Object{}, err
	}

	id := store.Join(parent, name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(id)),
		Body:          bytes.NewReader(content),
		ContentLength: aws.Int64(int64(len(content))),
		ContentType:   aws.String(contentType(name)),
	})
	if err != nil {
		return store.Object{}, fmt.Errorf("putting object: %w", err)
	}

	return store.Object{Name: name, ID: id, Size: int64(len(content))}, nil
}

// List returns the common prefixes under the store prefix, or the objects
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

	var objs []store.Object
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}

		if parent == "" {
			for _, cp := range page.CommonPrefixes {
				name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), prefix), "/")
				if store.ValidateName(name) == nil {
					objs = append(objs, store.Object{Name: name, ID: name})
				}
			}
			continue
		}

		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if store.ValidateName(name) != nil {
				continue
			}
			objs = append(objs, store.Object{
				Name: name,
				ID:   store.Join(parent, name),
				Size: aws.ToInt64(obj.Size),
			})
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

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("getting object: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("reading object body: %w", err)
	}
	return data, nil
}

// Delete removes an object. S3 reports no error for missing keys.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := store.Split(id); err != nil {
		return err
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	// S3 client doesn't need explicit closing.
	return nil
}

// key returns the full object key for an object ID.
func (s *Store) key(id string) string {
	return s.prefix + id
}

func contentType(name string) string {
	if strings.HasSuffix(name, ".json") {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}
