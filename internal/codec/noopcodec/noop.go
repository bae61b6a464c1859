// Package noopcodec provides a no-op codec (no compression).
package noopcodec

import (
	"io"

	"github.com/arman-k/stegdrive/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements no compression.
type Codec struct{}

// New returns a new no-op codec.
func New() *Codec {
	return &Codec{}
}

// Name returns "none".
func (c *Codec) Name() string {
	return "none"
}

// Reader returns r wrapped as a ReadCloser (no decompression).
// Closing the returned reader never closes r.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// Writer returns w wrapped as a WriteCloser (no compression).
// Closing the returned writer never closes w.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return &nopWriteCloser{w}, nil
}

// Extension returns empty string.
func (c *Codec) Extension() string {
	return ""
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
