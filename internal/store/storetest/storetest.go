// Package storetest checks that a store.Store implementation behaves the way
// the client expects.
package storetest

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/arman-k/stegdrive/internal/store"
)

// Run exercises a fresh, empty store returned by newStore.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("CreateFetch", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		obj, err := s.Create(ctx, "photo.jpg", "photo.jpg1", []byte("record"))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if obj.Name != "photo.jpg1" {
			t.Errorf("Create().Name = %q, want %q", obj.Name, "photo.jpg1")
		}

		got, err := s.Fetch(ctx, obj.ID)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if !bytes.Equal(got, []byte("record")) {
			t.Errorf("Fetch() = %q, want %q", got, "record")
		}
	})

	t.Run("CreateReplaces", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		if _, err := s.Create(ctx, "a", "a1", []byte("old")); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		obj, err := s.Create(ctx, "a", "a1", []byte("new"))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		got, err := s.Fetch(ctx, obj.ID)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if string(got) != "new" {
			t.Errorf("Fetch() = %q, want %q", got, "new")
		}
	})

	t.Run("CreateInvalidName", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Create(context.Background(), "a/b", "c", nil); !errors.Is(err, store.ErrInvalidName) {
			t.Errorf("Create() error = %v, want ErrInvalidName", err)
		}
		if _, err := s.Create(context.Background(), "a", "", nil); !errors.Is(err, store.ErrInvalidName) {
			t.Errorf("Create() error = %v, want ErrInvalidName", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		for _, o := range []struct{ parent, name string }{
			{"b.txt", "b.txt1"},
			{"a.bin", "a.bin2"},
			{"a.bin", "a.bin1"},
			{"a.bin", "manifest.json"},
		} {
			if _, err := s.Create(ctx, o.parent, o.name, []byte(o.name)); err != nil {
				t.Fatalf("Create(%q, %q) error = %v", o.parent, o.name, err)
			}
		}

		folders, err := s.List(ctx, "")
		if err != nil {
			t.Fatalf("List(\"\") error = %v", err)
		}
		if names := names(folders); !equal(names, []string{"a.bin", "b.txt"}) {
			t.Errorf("List(\"\") = %q, want [a.bin b.txt]", names)
		}

		objs, err := s.List(ctx, "a.bin")
		if err != nil {
			t.Fatalf("List(a.bin) error = %v", err)
		}
		if names := names(objs); !equal(names, []string{"a.bin1", "a.bin2", "manifest.json"}) {
			t.Errorf("List(a.bin) = %q", names)
		}
		for _, o := range objs {
			if o.Size != int64(len(o.Name)) {
				t.Errorf("%s size = %d, want %d", o.Name, o.Size, len(o.Name))
			}
			data, err := s.Fetch(ctx, o.ID)
			if err != nil {
				t.Fatalf("Fetch(%q) error = %v", o.ID, err)
			}
			if string(data) != o.Name {
				t.Errorf("Fetch(%q) = %q, want %q", o.ID, data, o.Name)
			}
		}

		missing, err := s.List(ctx, "nothing-here")
		if err != nil {
			t.Fatalf("List(missing) error = %v", err)
		}
		if len(missing) != 0 {
			t.Errorf("List(missing) = %v, want empty", missing)
		}
	})

	t.Run("FetchNotFound", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Fetch(context.Background(), store.Join("nope", "nope1")); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Fetch() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		obj, err := s.Create(ctx, "gone", "gone1", []byte("x"))
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := s.Delete(ctx, obj.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := s.Fetch(ctx, obj.ID); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("Fetch() after Delete error = %v, want ErrNotFound", err)
		}
		folders, err := s.List(ctx, "")
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(folders) != 0 {
			t.Errorf("List() after deleting last object = %q, want empty", names(folders))
		}
	})

	t.Run("Canceled", func(t *testing.T) {
		s := newStore(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := s.Create(ctx, "a", "a1", nil); !errors.Is(err, context.Canceled) {
			t.Errorf("Create() error = %v, want context.Canceled", err)
		}
	})
}

func names(objs []store.Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
