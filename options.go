package stegdrive

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/arman-k/stegdrive/internal/chunk"
	"github.com/arman-k/stegdrive/internal/codec"
	"github.com/arman-k/stegdrive/internal/codec/zlibcodec"
	"github.com/arman-k/stegdrive/internal/pipeline"
	"github.com/arman-k/stegdrive/internal/session"
	"github.com/arman-k/stegdrive/internal/stats"
	"github.com/arman-k/stegdrive/internal/store"
	"github.com/arman-k/stegdrive/internal/store/diskstore"
	"github.com/arman-k/stegdrive/internal/stream"
	"github.com/arman-k/stegdrive/internal/textcodec"
)

// Option configures a Client.
type Option interface {
	apply(*options)
}

// options holds the client configuration.
type options struct {
	store      store.Store
	session    *session.Session
	codec      codec.Codec
	encoding   textcodec.Encoding
	threshold  int
	readUnit   int
	blockSize  int
	stagingDir string
	stats      stats.Collector
	logger     *zap.Logger
	progress   ProgressFunc
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		codec:     zlibcodec.New(),
		encoding:  textcodec.Base64,
		threshold: chunk.DefaultThreshold,
		readUnit:  pipeline.DefaultReadUnit,
		blockSize: stream.DefaultBlockSize,
		stats:     stats.Discard,
		logger:    zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithStore sets the storage backend to use. The store never needs
// re-authentication; use WithSession for expiring credentials.
func WithStore(s store.Store) Option {
	return optionFunc(func(o *options) {
		o.store = s
	})
}

// WithSession sets the session that provides the store.
// It takes precedence over WithStore.
func WithSession(s *session.Session) Option {
	return optionFunc(func(o *options) {
		o.session = s
	})
}

// WithCodec sets the compression codec used for uploads.
// If not set, zlib is used.
func WithCodec(c codec.Codec) Option {
	return optionFunc(func(o *options) {
		o.codec = c
	})
}

// WithEncoding sets the binary-to-text encoding used for uploads.
// If not set, base64 is used.
func WithEncoding(e textcodec.Encoding) Option {
	return optionFunc(func(o *options) {
		o.encoding = e
	})
}

// WithThreshold sets the maximum number of compressed bytes per document.
// Default is 700000.
func WithThreshold(n int) Option {
	return optionFunc(func(o *options) {
		o.threshold = n
	})
}

// WithReadUnit sets the number of compressed bytes per record.
// Default is 768, which encodes to 1024 base64 characters.
func WithReadUnit(n int) Option {
	return optionFunc(func(o *options) {
		o.readUnit = n
	})
}

// WithBlockSize sets the buffer size used by the compressor and
// decompressor. Default is 1024.
func WithBlockSize(n int) Option {
	return optionFunc(func(o *options) {
		o.blockSize = n
	})
}

// WithStagingDir sets where transfers create their scratch directories.
// If not set, the system temporary directory is used.
func WithStagingDir(dir string) Option {
	return optionFunc(func(o *options) {
		o.stagingDir = dir
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithProgress sets a callback for transfer progress.
func WithProgress(fn ProgressFunc) Option {
	return optionFunc(func(o *options) {
		o.progress = fn
	})
}

// WithDataDir stores chunk sets as files under a local directory, one
// subdirectory per chunk set. The directory must exist.
func WithDataDir(dir string) (Option, error) {
	st, err := diskstore.New(dir)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}
	return WithStore(st), nil
}
