// Package codec provides streaming compression and decompression for the
// byte stream that is split into chunks.
package codec

import "io"

// Codec provides compression and decompression functionality.
type Codec interface {
	// Name identifies the codec in chunk-set manifests (e.g., "zlib").
	Name() string
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it. Close flushes any
	// buffered compressor state.
	Writer(w io.Writer) (io.WriteCloser, error)
	// Extension returns the file extension without dot (e.g., "zz", "gz").
	// Returns empty string for no compression.
	Extension() string
}
