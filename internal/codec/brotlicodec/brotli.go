// Package brotlicodec provides a brotli compression codec.
package brotlicodec

import (
	"io"

	"github.com/andybalholm/brotli"

	"github.com/arman-k/stegdrive/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements brotli compression.
type Codec struct{}

// New returns a new brotli codec.
func New() *Codec {
	return &Codec{}
}

// Name returns "brotli".
func (c *Codec) Name() string {
	return "brotli"
}

// Reader wraps r to decompress brotli data.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(r)), nil
}

// Writer wraps w to compress data with brotli.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return brotli.NewWriter(w), nil
}

// Extension returns "br".
func (c *Codec) Extension() string {
	return "br"
}
