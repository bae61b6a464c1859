package textcodec

import (
	"encoding/base64"
	"fmt"
)

type base64Encoding struct{}

func (base64Encoding) Name() string { return "base64" }

func (base64Encoding) Encode(block []byte) string {
	return base64.StdEncoding.EncodeToString(block)
}

func (base64Encoding) Decode(record string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return b, nil
}

func (base64Encoding) EncodedLen(n int) int {
	return base64.StdEncoding.EncodedLen(n)
}
