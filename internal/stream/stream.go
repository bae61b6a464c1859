// Package stream runs a codec over a byte stream in fixed-size blocks.
//
// Memory use is bounded by the block size and the codec's own window,
// independent of the stream length. An empty source compresses to an empty
// stream and an empty compressed stream decompresses to nothing, so a
// zero-byte file never produces codec framing bytes.
package stream

import (
	"bufio"
	"errors"
	"io"

	"github.com/arman-k/stegdrive/internal/codec"
	"github.com/arman-k/stegdrive/internal/fault"
)

// DefaultBlockSize is the number of bytes fed to the codec per step.
const DefaultBlockSize = 1024

// Result reports the bytes consumed and produced by one run.
type Result struct {
	In  int64
	Out int64
}

// Compress reads src in blocks of blockSize bytes, compresses them with c and
// writes the compressed stream to dst. The codec is flushed once src is
// exhausted.
func Compress(dst io.Writer, src io.Reader, c codec.Codec, blockSize int) (res Result, err error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	out := &countingWriter{w: dst}
	buf := make([]byte, blockSize)

	var zw io.WriteCloser
	defer func() {
		res.Out = out.n
		if err != nil && zw != nil {
			zw.Close()
		}
	}()

	for {
		n, rerr := io.ReadFull(src, buf)
		if n > 0 {
			if zw == nil {
				if zw, err = c.Writer(out); err != nil {
					return res, fault.Codec("creating compressor", err)
				}
			}
			res.In += int64(n)
			if _, err = zw.Write(buf[:n]); err != nil {
				return res, fault.IO("writing compressed stream", err)
			}
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			break
		}
		if rerr != nil {
			return res, fault.IO("reading source", rerr)
		}
	}

	if zw == nil {
		return res, nil
	}
	if err = zw.Close(); err != nil {
		zw = nil
		return res, fault.IO("flushing compressor", err)
	}
	return res, nil
}

// Decompress reads the compressed stream from src, decompresses it with c and
// writes the output to dst. Every byte the decompressor can produce is
// written before more input is requested; short reads never end the loop,
// only the end of the compressed stream does.
//
// Malformed compressed data is reported as fault.ErrCodec. Failures of src or
// dst keep their own classification (fault.ErrIO when unclassified).
func Decompress(dst io.Writer, src io.Reader, c codec.Codec, blockSize int) (res Result, err error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}

	in := &trackingReader{r: src}
	defer func() { res.In = in.n }()

	br := bufio.NewReaderSize(in, blockSize)
	if _, err := br.Peek(1); err != nil {
		if err == io.EOF {
			return res, nil
		}
		return res, in.fail("reading compressed stream", err)
	}

	zr, err := c.Reader(br)
	if err != nil {
		return res, in.fail("creating decompressor", err)
	}
	defer zr.Close()

	buf := make([]byte, blockSize)
	for {
		n, rerr := zr.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return res, fault.IO("writing output", err)
			}
			res.Out += int64(n)
		}
		if rerr == io.EOF {
			return res, nil
		}
		if rerr != nil {
			return res, in.fail("decompressing", rerr)
		}
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// trackingReader remembers the first error returned by the compressed
// source so it can be told apart from errors the decompressor raises.
type trackingReader struct {
	r   io.Reader
	n   int64
	err error
}

func (tr *trackingReader) Read(p []byte) (int, error) {
	n, err := tr.r.Read(p)
	tr.n += int64(n)
	if err != nil && !errors.Is(err, io.EOF) && tr.err == nil {
		tr.err = err
	}
	return n, err
}

func (tr *trackingReader) fail(op string, err error) error {
	if tr.err != nil {
		return fault.IO(op, tr.err)
	}
	return fault.Codec(op, err)
}
