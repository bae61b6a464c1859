// Package store defines the remote object store a chunk set is pushed to.
//
// A store holds flat objects grouped under one level of folders. Folders are
// implicit: creating an object under parent "photo.jpg" makes folder
// "photo.jpg" appear in List(ctx, "").
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an object does not exist in the store.
	ErrNotFound = errors.New("store: object not found")

	// ErrInvalidName is returned for empty names or names containing a slash.
	ErrInvalidName = errors.New("store: invalid name")
)

// Object describes a stored object or folder.
type Object struct {
	// Name is the object's name within its parent folder.
	Name string
	// ID identifies the object for Fetch and Delete.
	ID string
	// Size is the content length in bytes, zero for folders.
	Size int64
}

// Store defines the interface for storage backends.
// Implementations handle path formats and storage details internally.
type Store interface {
	// Create stores content as name inside folder parent. An existing
	// object with the same name is replaced.
	Create(ctx context.Context, parent, name string, content []byte) (Object, error)

	// List returns the objects in parent ordered by name. An empty parent
	// lists the folders at the top level. A missing folder lists as empty.
	List(ctx context.Context, parent string) ([]Object, error)

	// Fetch returns the content of the object with the given ID.
	Fetch(ctx context.Context, id string) ([]byte, error)

	// Delete removes the object with the given ID.
	Delete(ctx context.Context, id string) error

	// Close releases any resources held by the store.
	Close() error
}

// ValidateName rejects names that cannot be used as a folder or object name.
func ValidateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Join returns the ID of object name inside folder parent.
func Join(parent, name string) string {
	return parent + "/" + name
}

// Split is the inverse of Join.
func Split(id string) (parent, name string, err error) {
	parent, name, ok := strings.Cut(id, "/")
	if !ok || ValidateName(parent) != nil || ValidateName(name) != nil {
		return "", "", fmt.Errorf("%w: id %q", ErrInvalidName, id)
	}
	return parent, name, nil
}

// CheckCreate validates the arguments of Create.
func CheckCreate(parent, name string) error {
	if err := ValidateName(parent); err != nil {
		return err
	}
	return ValidateName(name)
}
