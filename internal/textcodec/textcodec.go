// Package textcodec maps compressed bytes to printable text records and back.
//
// Each record carries one read unit of the compressed stream. Records never
// contain line breaks, so a document container can store one record per
// paragraph.
package textcodec

import (
	"errors"
	"fmt"
)

// ErrMalformed is returned when a record cannot be decoded.
var ErrMalformed = errors.New("textcodec: malformed record")

// Encoding is a reversible binary-to-text encoding.
type Encoding interface {
	// Name identifies the encoding in manifests and document headers.
	Name() string
	// Encode returns the text record for block.
	Encode(block []byte) string
	// Decode returns the bytes carried by record.
	Decode(record string) ([]byte, error)
	// EncodedLen returns the record length for a block of n bytes.
	EncodedLen(n int) int
}

// Base64 is the default encoding.
var Base64 Encoding = base64Encoding{}

// ASCII85 trades a slightly larger alphabet for ~8% smaller records than Base64.
var ASCII85 Encoding = ascii85Encoding{}

// ByName returns the encoding with the given name.
func ByName(name string) (Encoding, error) {
	switch name {
	case "", Base64.Name():
		return Base64, nil
	case ASCII85.Name():
		return ASCII85, nil
	default:
		return nil, fmt.Errorf("unknown text encoding %q", name)
	}
}
