package diskstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arman-k/stegdrive/internal/store"
	"github.com/arman-k/stegdrive/internal/store/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		s, err := New(t.TempDir())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		return s
	})
}

func TestStore_Layout(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if _, err := s.Create(context.Background(), "photo.jpg", "photo.jpg1", []byte("doc")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "photo.jpg", "photo.jpg1"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "doc" {
		t.Errorf("file content = %q, want %q", data, "doc")
	}

	entries, err := os.ReadDir(filepath.Join(dir, "photo.jpg"))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("folder holds %d entries, want 1 (no temp files left)", len(entries))
	}
}

func TestStore_ListSkipsStrayFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "loose.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "set", "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	folders, err := s.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(folders) != 1 || folders[0].Name != "set" {
		t.Errorf("List(\"\") = %v, want [set]", folders)
	}

	objs, err := s.List(context.Background(), "set")
	if err != nil {
		t.Fatalf("List(set) error = %v", err)
	}
	if len(objs) != 0 {
		t.Errorf("List(set) = %v, want empty", objs)
	}
}

func TestNew_InvalidPath(t *testing.T) {
	_, err := New("/nonexistent/path")
	if err == nil {
		t.Error("New() with invalid path should return error")
	}
}

func TestNew_NotDirectory(t *testing.T) {
	// Create a file, not a directory.
	f, err := os.CreateTemp("", "test")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	defer os.Remove(f.Name())

	_, err = New(f.Name())
	if err == nil {
		t.Error("New() with file (not directory) should return error")
	}
}

func TestStore_DotNames(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if _, err := s.Create(ctx, ".bashrc", ".bashrc1", []byte("doc")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	// A write interrupted before its rename.
	if err := os.WriteFile(filepath.Join(dir, ".bashrc", TempPrefix+".bashrc2-123"), []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	folders, err := s.List(ctx, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(folders) != 1 || folders[0].Name != ".bashrc" {
		t.Errorf("List(\"\") = %v, want [.bashrc]", folders)
	}

	objs, err := s.List(ctx, ".bashrc")
	if err != nil {
		t.Fatalf("List(.bashrc) error = %v", err)
	}
	if len(objs) != 1 || objs[0].Name != ".bashrc1" {
		t.Errorf("List(.bashrc) = %v, want [.bashrc1]", objs)
	}
}

func TestStore_CreateRejectsTempPrefix(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for _, tt := range []struct{ parent, name string }{
		{TempPrefix + "set", "doc"},
		{"set", TempPrefix + "doc"},
	} {
		if _, err := s.Create(context.Background(), tt.parent, tt.name, []byte("x")); !errors.Is(err, store.ErrInvalidName) {
			t.Errorf("Create(%q, %q) error = %v, want ErrInvalidName", tt.parent, tt.name, err)
		}
	}
}
