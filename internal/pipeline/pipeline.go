// Package pipeline connects the stream codec, the text encoding and the
// chunk writer/reader into the two transforms of a chunk set:
//
//	Encode: source -> compress -> read units -> encode -> chunks
//	Decode: chunks -> decode -> decompress -> destination
//
// Both transforms are single-pass, single-threaded and blocking. Stages are
// joined by explicit buffers, never by goroutines.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/arman-k/stegdrive/internal/chunk"
	"github.com/arman-k/stegdrive/internal/codec"
	"github.com/arman-k/stegdrive/internal/codec/zlibcodec"
	"github.com/arman-k/stegdrive/internal/fault"
	"github.com/arman-k/stegdrive/internal/stream"
	"github.com/arman-k/stegdrive/internal/textcodec"
)

// DefaultReadUnit is the number of compressed bytes carried by one record.
// 768 bytes encode to exactly 1024 base64 characters.
const DefaultReadUnit = 768

// ErrEmptySet is returned when a chunk set holds no chunks at all.
var ErrEmptySet = errors.New("pipeline: chunk set has no chunks")

// Config configures a transform. Zero values select the defaults.
type Config struct {
	Codec     codec.Codec
	Encoding  textcodec.Encoding
	BlockSize int
	ReadUnit  int
	Threshold int
	EndMode   chunk.EndMode
	Name      string
	Logger    *zap.Logger
	Progress  ProgressFunc
}

func (c Config) withDefaults() Config {
	if c.Codec == nil {
		c.Codec = zlibcodec.New()
	}
	if c.Encoding == nil {
		c.Encoding = textcodec.Base64
	}
	if c.BlockSize <= 0 {
		c.BlockSize = stream.DefaultBlockSize
	}
	if c.ReadUnit <= 0 {
		c.ReadUnit = DefaultReadUnit
	}
	if c.Threshold <= 0 {
		c.Threshold = chunk.DefaultThreshold
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Validate reports configurations that cannot honor the chunk bound.
func (c Config) Validate() error {
	c = c.withDefaults()
	if c.Threshold < c.ReadUnit {
		return fmt.Errorf("rollover threshold %d is smaller than read unit %d", c.Threshold, c.ReadUnit)
	}
	return nil
}

// Result summarizes a transform.
type Result struct {
	SourceBytes     int64
	CompressedBytes int64
	Chunks          int
	Records         int
}

// Encode compresses src, splits the compressed stream into read units and
// persists them as chunks to sink. At least one chunk is persisted, even
// for an empty source.
func Encode(ctx context.Context, src io.Reader, sink chunk.Sink, cfg Config) (Result, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	start := time.Now()
	var read atomic.Int64
	var w *chunk.Writer
	w = chunk.NewWriter(chunk.SinkFunc(func(c *chunk.Chunk) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.Persist(c); err != nil {
			return err
		}
		cfg.Logger.Debug("chunk persisted",
			zap.String("name", cfg.Name),
			zap.Int("seq", c.Seq),
			zap.Int("records", len(c.Records)),
			zap.Int("payload", c.Payload),
		)
		report(cfg, Progress{
			Phase:     PhaseEncode,
			Name:      cfg.Name,
			Bytes:     read.Load(),
			Chunks:    w.Chunks() + 1,
			Records:   w.Records(),
			StartTime: start,
		})
		return nil
	}), cfg.Encoding, cfg.Threshold)

	units := newUnitWriter(w, cfg.ReadUnit)
	sr, err := stream.Compress(units, newProgressReader(src, &read), cfg.Codec, cfg.BlockSize)
	res := Result{SourceBytes: sr.In, CompressedBytes: sr.Out}
	if err != nil {
		return res, err
	}
	if err := units.Flush(); err != nil {
		return res, fault.IO("writing last read unit", err)
	}
	if err := w.Write(nil); err != nil {
		return res, fault.IO("ending stream", err)
	}
	if err := w.Close(); err != nil {
		return res, fault.IO("finalizing chunk", err)
	}

	res.Chunks, res.Records = w.Chunks(), w.Records()
	cfg.Logger.Debug("encoded",
		zap.String("name", cfg.Name),
		zap.Int64("sourceBytes", res.SourceBytes),
		zap.Int64("compressedBytes", res.CompressedBytes),
		zap.Int("chunks", res.Chunks),
		zap.Int("records", res.Records),
	)
	return res, nil
}

// Decode reads the chunks of src in order, decodes their records and
// decompresses the result into dst.
func Decode(ctx context.Context, src chunk.Source, dst io.Writer, cfg Config) (Result, error) {
	cfg = cfg.withDefaults()

	start := time.Now()
	var written atomic.Int64
	var r *chunk.Reader
	r = chunk.NewReader(sourceFunc(func() (*chunk.Chunk, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, err := src.Next()
		if err != nil {
			return nil, err
		}
		report(cfg, Progress{
			Phase:     PhaseDecode,
			Name:      cfg.Name,
			Bytes:     written.Load(),
			Chunks:    r.Chunks() + 1,
			Records:   r.Records(),
			StartTime: start,
		})
		return c, nil
	}), cfg.Encoding, cfg.EndMode)

	sr, err := stream.Decompress(newProgressWriter(dst, &written), r, cfg.Codec, cfg.BlockSize)
	res := Result{
		SourceBytes:     sr.Out,
		CompressedBytes: sr.In,
		Chunks:          r.Chunks(),
		Records:         r.Records(),
	}
	if err != nil {
		return res, err
	}
	if res.Chunks == 0 {
		return res, fault.Codec("decoding", ErrEmptySet)
	}
	// Drain chunks left after the end of the compressed stream so a
	// malformed or misordered tail is still reported.
	if _, err := io.Copy(io.Discard, r); err != nil {
		return res, err
	}
	res.Chunks, res.Records = r.Chunks(), r.Records()

	cfg.Logger.Debug("decoded",
		zap.String("name", cfg.Name),
		zap.Int64("sourceBytes", res.SourceBytes),
		zap.Int64("compressedBytes", res.CompressedBytes),
		zap.Int("chunks", res.Chunks),
		zap.Int("records", res.Records),
	)
	return res, nil
}

func report(cfg Config, p Progress) {
	if cfg.Progress != nil {
		cfg.Progress(p)
	}
}

type sourceFunc func() (*chunk.Chunk, error)

func (f sourceFunc) Next() (*chunk.Chunk, error) { return f() }

// unitWriter cuts the compressed stream into fixed-size read units. Only
// the last unit of a stream may be shorter.
type unitWriter struct {
	w   *chunk.Writer
	buf []byte
}

func newUnitWriter(w *chunk.Writer, size int) *unitWriter {
	return &unitWriter{w: w, buf: make([]byte, 0, size)}
}

func (u *unitWriter) Write(p []byte) (int, error) {
	n := 0
	for len(p) > 0 {
		k := copy(u.buf[len(u.buf):cap(u.buf)], p)
		u.buf = u.buf[:len(u.buf)+k]
		p = p[k:]
		n += k
		if len(u.buf) == cap(u.buf) {
			if err := u.w.Write(u.buf); err != nil {
				return n, err
			}
			u.buf = u.buf[:0]
		}
	}
	return n, nil
}

// Flush writes the final partial unit, if any.
func (u *unitWriter) Flush() error {
	if len(u.buf) == 0 {
		return nil
	}
	err := u.w.Write(u.buf)
	u.buf = u.buf[:0]
	return err
}
