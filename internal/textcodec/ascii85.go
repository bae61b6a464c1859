package textcodec

import (
	"encoding/ascii85"
	"fmt"
)

type ascii85Encoding struct{}

func (ascii85Encoding) Name() string { return "ascii85" }

// Encode never uses the "z" shorthand so the record length depends only on
// the block length.
func (ascii85Encoding) Encode(block []byte) string {
	dst := make([]byte, ascii85.MaxEncodedLen(len(block)))
	n := ascii85.Encode(dst, block)
	return expandZ(dst[:n], len(block))
}

func (ascii85Encoding) Decode(record string) ([]byte, error) {
	dst := make([]byte, 4*len(record)/5+4)
	ndst, nsrc, err := ascii85.Decode(dst, []byte(record), true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if nsrc != len(record) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformed, len(record)-nsrc)
	}
	return dst[:ndst], nil
}

func (ascii85Encoding) EncodedLen(n int) int {
	full, rem := n/4, n%4
	if rem == 0 {
		return full * 5
	}
	return full*5 + rem + 1
}

// expandZ rewrites each "z" group (four zero bytes) as "!!!!!".
func expandZ(enc []byte, n int) string {
	want := ascii85Encoding{}.EncodedLen(n)
	if len(enc) == want {
		return string(enc)
	}
	out := make([]byte, 0, want)
	for _, c := range enc {
		if c == 'z' {
			out = append(out, "!!!!!"...)
			continue
		}
		out = append(out, c)
	}
	return string(out)
}
