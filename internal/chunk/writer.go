package chunk

import (
	"fmt"

	"github.com/arman-k/stegdrive/internal/textcodec"
)

// Writer groups encoded blocks into chunks, starting a new chunk once the
// cumulative pre-encoding size reaches the threshold.
//
// The block that reaches the threshold opens the next chunk and is counted
// towards it, so no chunk ever carries more than threshold payload bytes.
// Sets written by the legacy tool may hold up to threshold plus one read unit
// per chunk.
type Writer struct {
	sink      Sink
	enc       textcodec.Encoding
	threshold int

	cur     *Chunk
	counter int
	chunks  int
	records int
	closed  bool
	err     error
}

// NewWriter returns a Writer that persists chunks to sink.
// A threshold <= 0 selects DefaultThreshold.
func NewWriter(sink Sink, enc textcodec.Encoding, threshold int) *Writer {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Writer{
		sink:      sink,
		enc:       enc,
		threshold: threshold,
		cur:       &Chunk{Seq: 1},
	}
}

// Write encodes block as one record of the current chunk. An empty block
// marks the end of the stream and adds nothing.
func (w *Writer) Write(block []byte) error {
	if w.err != nil {
		return w.err
	}
	if w.closed {
		return ErrClosed
	}
	if len(block) == 0 {
		return nil
	}
	if len(block) > w.threshold {
		return fmt.Errorf("%w: %d > %d", ErrBlockTooLarge, len(block), w.threshold)
	}

	w.counter += len(block)
	if w.counter >= w.threshold && len(w.cur.Records) > 0 {
		if err := w.persist(); err != nil {
			return err
		}
		w.cur = &Chunk{Seq: w.cur.Seq + 1}
		w.counter = len(block)
	}

	w.cur.Records = append(w.cur.Records, w.enc.Encode(block))
	w.cur.Payload += len(block)
	w.records++
	return nil
}

// Close persists the current chunk, even when it holds no records, so every
// stream produces at least one chunk.
func (w *Writer) Close() error {
	if w.err != nil {
		return w.err
	}
	if w.closed {
		return ErrClosed
	}
	w.closed = true
	return w.persist()
}

// Chunks returns the number of chunks persisted so far.
func (w *Writer) Chunks() int { return w.chunks }

// Records returns the number of records written so far.
func (w *Writer) Records() int { return w.records }

func (w *Writer) persist() error {
	if err := w.sink.Persist(w.cur); err != nil {
		w.err = fmt.Errorf("persisting chunk %d: %w", w.cur.Seq, err)
		return w.err
	}
	w.chunks++
	return nil
}
