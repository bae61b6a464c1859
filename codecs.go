package stegdrive

import (
	"fmt"

	"github.com/arman-k/stegdrive/internal/codec"
	"github.com/arman-k/stegdrive/internal/codec/brotlicodec"
	"github.com/arman-k/stegdrive/internal/codec/flatecodec"
	"github.com/arman-k/stegdrive/internal/codec/gzipcodec"
	"github.com/arman-k/stegdrive/internal/codec/lz4codec"
	"github.com/arman-k/stegdrive/internal/codec/noopcodec"
	"github.com/arman-k/stegdrive/internal/codec/zlibcodec"
	"github.com/arman-k/stegdrive/internal/codec/zstdcodec"
	"github.com/arman-k/stegdrive/internal/textcodec"
)

// Codecs returns every supported compression codec, default first.
func Codecs() []codec.Codec {
	return []codec.Codec{
		zlibcodec.New(),
		zstdcodec.New(),
		gzipcodec.New(),
		flatecodec.New(),
		lz4codec.New(),
		brotlicodec.New(),
		noopcodec.New(),
	}
}

// CodecByName returns the codec with the given name. An empty name selects
// the default, zlib.
func CodecByName(name string) (codec.Codec, error) {
	if name == "" {
		return zlibcodec.New(), nil
	}
	for _, c := range Codecs() {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown codec %q", name)
}

// EncodingByName returns the text encoding with the given name. An empty
// name selects the default, base64.
func EncodingByName(name string) (textcodec.Encoding, error) {
	return textcodec.ByName(name)
}
