// Package zlibcodec provides a zlib compression codec. It is the default
// codec and matches the container produced by other zlib implementations.
package zlibcodec

import (
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/arman-k/stegdrive/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements zlib compression.
type Codec struct {
	level int
}

// New returns a new zlib codec using the default compression level.
func New() *Codec {
	return &Codec{level: zlib.DefaultCompression}
}

// NewLevel returns a zlib codec using the given compression level.
func NewLevel(level int) *Codec {
	return &Codec{level: level}
}

// Name returns "zlib".
func (c *Codec) Name() string {
	return "zlib"
}

// Reader wraps r to decompress zlib data.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return zlib.NewReader(r)
}

// Writer wraps w to compress data with zlib.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return zlib.NewWriterLevel(w, c.level)
}

// Extension returns "zz".
func (c *Codec) Extension() string {
	return "zz"
}
