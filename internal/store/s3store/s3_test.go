package s3store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/arman-k/stegdrive/internal/store"
	"github.com/arman-k/stegdrive/internal/store/storetest"
)

// fakeS3 is an in-memory bucket. Listings return pageSize entries per page
// so the paginator is exercised.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	pageSize int
	puts     []*s3.PutObjectInput
	getErr   error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), pageSize: 2}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = data
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("no such key")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	prefix, delim := aws.ToString(in.Prefix), aws.ToString(in.Delimiter)

	// Entries are keys or common prefixes, in key order.
	type entry struct {
		key    string
		common bool
	}
	seen := make(map[string]bool)
	var entries []entry
	for key := range f.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.TrimPrefix(key, prefix)
		if i := strings.Index(rest, delim); delim != "" && i >= 0 {
			cp := prefix + rest[:i+len(delim)]
			if !seen[cp] {
				seen[cp] = true
				entries = append(entries, entry{cp, true})
			}
			continue
		}
		entries = append(entries, entry{key, false})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })

	start := 0
	if tok := aws.ToString(in.ContinuationToken); tok != "" {
		start, _ = strconv.Atoi(tok)
	}
	end := min(start+f.pageSize, len(entries))

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(end < len(entries))}
	if end < len(entries) {
		out.NextContinuationToken = aws.String(strconv.Itoa(end))
	}
	for _, e := range entries[start:end] {
		if e.common {
			out.CommonPrefixes = append(out.CommonPrefixes, types.CommonPrefix{Prefix: aws.String(e.key)})
			continue
		}
		out.Contents = append(out.Contents, types.Object{
			Key:  aws.String(e.key),
			Size: aws.Int64(int64(len(f.objects[e.key]))),
		})
	}
	return out, nil
}

func newTestStore(fake *fakeS3, prefix string) *Store {
	s := &Store{client: fake, bucket: "bucket"}
	WithPrefix(prefix)(s)
	return s
}

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return newTestStore(newFakeS3(), "data/v1")
	})
}

func TestStore_Keys(t *testing.T) {
	fake := newFakeS3()
	s := newTestStore(fake, "data/v1/")

	if _, err := s.Create(context.Background(), "photo.jpg", "photo.jpg1", []byte("doc")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := s.Create(context.Background(), "photo.jpg", "manifest.json", []byte("{}")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, ok := fake.objects["data/v1/photo.jpg/photo.jpg1"]; !ok {
		t.Errorf("objects = %v, want key data/v1/photo.jpg/photo.jpg1", fake.objects)
	}
	if got := aws.ToString(fake.puts[0].ContentType); got != "text/plain; charset=utf-8" {
		t.Errorf("document ContentType = %q", got)
	}
	if got := aws.ToString(fake.puts[1].ContentType); got != "application/json" {
		t.Errorf("manifest ContentType = %q", got)
	}
}

func TestStore_ListIgnoresOtherPrefixes(t *testing.T) {
	fake := newFakeS3()
	fake.objects["other/a/a1"] = []byte("x")
	fake.objects["data/loose"] = []byte("x")
	s := newTestStore(fake, "data")

	if _, err := s.Create(context.Background(), "set", "set1", []byte("x")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	folders, err := s.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(folders) != 1 || folders[0].Name != "set" {
		t.Errorf("List(\"\") = %v, want [set]", folders)
	}
}

func TestStore_FetchError(t *testing.T) {
	fake := newFakeS3()
	fake.getErr = errors.New("access denied")
	s := newTestStore(fake, "")

	_, err := s.Fetch(context.Background(), "a/a1")
	if err == nil || errors.Is(err, store.ErrNotFound) {
		t.Errorf("Fetch() error = %v, want access error", err)
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
			if err := opt(s); err != nil {
				t.Fatalf("WithPrefix() error = %v", err)
			}
			if s.prefix != tt.want {
				t.Errorf("prefix = %q, want %q", s.prefix, tt.want)
			}
		})
	}
}

func TestParseURL(t *testing.T) {
	tests := []struct {
		url     string
		bucket  string
		prefix  string
		wantErr bool
	}{
		{"s3://bucket", "bucket", "", false},
		{"s3://bucket/", "bucket", "", false},
		{"s3://bucket/a/b", "bucket", "a/b", false},
		{"gs://bucket", "", "", true},
		{"s3://", "", "", true},
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

func TestStore_Close(t *testing.T) {
	s := &Store{}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestWithEndpoint_DoesNotPanic(t *testing.T) {
	s := &Store{}
	opt := WithEndpoint("http://localhost:9000")
	// This should not panic.
	_ = opt(s)
}
