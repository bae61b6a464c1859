package staging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDir_Lifecycle(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "root")

	d, err := New(root, "upload-*")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !strings.HasPrefix(filepath.Base(d.Path()), "upload-") {
		t.Errorf("Path() = %q, want upload-* pattern", d.Path())
	}

	if err := d.WriteFile("b1", []byte("second")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := d.CopyFrom("a1", strings.NewReader("first")); err != nil {
		t.Fatalf("CopyFrom() error = %v", err)
	}
	if err := os.Mkdir(d.Join("sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := d.Names()
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	if len(names) != 2 || names[0] != "a1" || names[1] != "b1" {
		t.Errorf("Names() = %q, want [a1 b1]", names)
	}

	data, err := d.ReadFile("a1")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "first" {
		t.Errorf("ReadFile() = %q, want %q", data, "first")
	}

	f, err := d.Open("b1")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	f.Close()

	if err := d.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(d.Path()); !os.IsNotExist(err) {
		t.Errorf("staging dir still exists after Remove(): %v", err)
	}
	if err := d.Remove(); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
}

func TestNew_Unique(t *testing.T) {
	root := t.TempDir()
	a, err := New(root, "x-*")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	b, err := New(root, "x-*")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.Path() == b.Path() {
		t.Errorf("two staging dirs share path %q", a.Path())
	}
}

func TestNew_RootIsFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(f, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(f, "x-*"); err == nil {
		t.Error("New() under a regular file should fail")
	}
}
