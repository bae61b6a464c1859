package chunk

import (
	"fmt"
	"io"

	"github.com/arman-k/stegdrive/internal/fault"
	"github.com/arman-k/stegdrive/internal/textcodec"
)

// EndMode selects how the end of a chunk is detected.
type EndMode int

const (
	// Counted reads every record the container holds. A record that
	// decodes to zero bytes contributes nothing and reading continues.
	Counted EndMode = iota

	// Sentinel stops reading a chunk at the first record that decodes to
	// zero bytes and skips the rest of that chunk. Legacy documents carry
	// no record count and end with an empty paragraph; a genuine empty
	// record in the middle of such a chunk truncates the output.
	Sentinel
)

func (m EndMode) String() string {
	switch m {
	case Counted:
		return "counted"
	case Sentinel:
		return "sentinel"
	default:
		return fmt.Sprintf("EndMode(%d)", int(m))
	}
}

// Reader decodes the records of a chunk set into one byte stream.
// It is lazy: a chunk is pulled from the Source only once the previous one
// is exhausted.
type Reader struct {
	src  Source
	enc  textcodec.Encoding
	mode EndMode

	cur     *Chunk
	idx     int
	buf     []byte
	chunks  int
	records int
	err     error
}

// NewReader returns a Reader over the chunks of src.
func NewReader(src Source, enc textcodec.Encoding, mode EndMode) *Reader {
	return &Reader{src: src, enc: enc, mode: mode}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.err != nil {
			return 0, r.err
		}
		r.err = r.advance()
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// Chunks returns the number of chunks consumed so far.
func (r *Reader) Chunks() int { return r.chunks }

// Records returns the number of records decoded so far.
func (r *Reader) Records() int { return r.records }

// advance loads the next non-empty record into buf.
func (r *Reader) advance() error {
	for {
		if r.cur == nil || r.idx >= len(r.cur.Records) {
			c, err := r.src.Next()
			if err == io.EOF {
				return io.EOF
			}
			if err != nil {
				return fault.IO("reading chunk", err)
			}
			if c.Seq != r.chunks+1 {
				return fault.Codec("reading chunk", fmt.Errorf("%w: got %d, want %d", ErrOutOfOrder, c.Seq, r.chunks+1))
			}
			r.cur, r.idx = c, 0
			r.chunks++
			continue
		}

		record := r.cur.Records[r.idx]
		r.idx++
		data, err := r.enc.Decode(record)
		if err != nil {
			return fault.Codec(fmt.Sprintf("chunk %d record %d", r.cur.Seq, r.idx), err)
		}
		r.records++
		if len(data) == 0 {
			if r.mode == Sentinel {
				r.idx = len(r.cur.Records)
			}
			continue
		}
		r.buf = data
		return nil
	}
}
