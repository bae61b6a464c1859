// Package flatecodec provides a raw deflate codec without a container header.
package flatecodec

import (
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/arman-k/stegdrive/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements raw deflate compression.
type Codec struct{}

// New returns a new deflate codec.
func New() *Codec {
	return &Codec{}
}

// Name returns "flate".
func (c *Codec) Name() string {
	return "flate"
}

// Reader wraps r to decompress deflate data.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return flate.NewReader(r), nil
}

// Writer wraps w to compress data with deflate.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return flate.NewWriter(w, flate.DefaultCompression)
}

// Extension returns "deflate".
func (c *Codec) Extension() string {
	return "deflate"
}
