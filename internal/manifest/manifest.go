// Package manifest describes a stored chunk set.
//
// The manifest is written after every chunk of a set has been stored, so its
// presence marks the set as complete. Chunk sets written before manifests
// existed are still readable; the reader then falls back to its own codec
// settings.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Filename is the name of the manifest inside a chunk-set folder.
const Filename = "manifest.json"

// CurrentVersion is the manifest format version written by this package.
const CurrentVersion = 1

// ErrVersion is returned for manifests written by a newer format.
var ErrVersion = errors.New("manifest: unsupported version")

// Manifest contains metadata about a stored chunk set.
type Manifest struct {
	Version        int       `json:"version"`
	Source         string    `json:"source"`
	Size           int64     `json:"size"`
	CompressedSize int64     `json:"compressed_size"`
	Chunks         int       `json:"chunks"`
	Records        int       `json:"records"`
	Codec          string    `json:"codec"`
	Encoding       string    `json:"encoding"`
	ReadUnit       int       `json:"read_unit"`
	Threshold      int       `json:"threshold"`
	CreatedAt      time.Time `json:"created_at"`
}

// Ratio returns the compressed size relative to the source size.
func (m *Manifest) Ratio() float64 {
	if m.Size == 0 {
		return 0
	}
	return float64(m.CompressedSize) / float64(m.Size)
}

// Marshal encodes m as indented JSON.
func Marshal(m *Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling manifest: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a manifest and checks its version.
func Unmarshal(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Version < 1 || m.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, m.Version)
	}
	return &m, nil
}

// Write writes the manifest to dir.
func Write(dir string, m *Manifest) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, Filename), data, 0644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Read reads the manifest from dir.
func Read(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, Filename))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Unmarshal(data)
}
