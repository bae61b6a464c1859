package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpen(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files/report.pdf":
			w.Write([]byte("%PDF-1.7"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := New()
	ctx := context.Background()

	body, size, err := f.Open(ctx, srv.URL+"/files/report.pdf")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(data) != "%PDF-1.7" {
		t.Errorf("body = %q", data)
	}
	if size != int64(len(data)) {
		t.Errorf("size = %d, want %d", size, len(data))
	}

	if _, _, err := f.Open(ctx, srv.URL+"/missing"); err == nil {
		t.Error("Open() of missing URL should fail")
	}
}

func TestOpen_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New(WithTimeout(time.Second)).Open(ctx, srv.URL)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Open() error = %v, want context.Canceled", err)
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://example.com/a/photo.jpg", "photo.jpg", false},
		{"https://example.com/a/my%20file.txt?x=1", "my file.txt", false},
		{"https://example.com/", "", true},
		{"https://example.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := Name(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Name() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	for s, want := range map[string]bool{
		"https://example.com/x": true,
		"http://example.com/x":  true,
		"./photo.jpg":           false,
		"s3://bucket/x":         false,
	} {
		if got := IsURL(s); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", s, got, want)
		}
	}
}
