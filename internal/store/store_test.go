package store

import (
	"errors"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"photo.jpg", false},
		{"photo.jpg1", false},
		{"manifest.json", false},
		{"", true},
		{".", true},
		{"..", true},
		{"a/b", true},
		{`a\b`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidName) {
				t.Errorf("ValidateName(%q) error = %v, want ErrInvalidName", tt.name, err)
			}
		})
	}
}

func TestJoinSplit(t *testing.T) {
	id := Join("photo.jpg", "photo.jpg2")
	if id != "photo.jpg/photo.jpg2" {
		t.Errorf("Join() = %q", id)
	}
	parent, name, err := Split(id)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if parent != "photo.jpg" || name != "photo.jpg2" {
		t.Errorf("Split() = %q, %q", parent, name)
	}

	for _, bad := range []string{"", "noslash", "/x", "x/", "a/b/c"} {
		if _, _, err := Split(bad); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Split(%q) error = %v, want ErrInvalidName", bad, err)
		}
	}
}
