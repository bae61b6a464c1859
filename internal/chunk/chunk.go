// Package chunk splits a stream of text records into size-bounded chunks and
// reassembles them.
//
// A chunk stands for one document in the storage medium. Chunks are numbered
// from 1 and must be read back in ascending order; the number is carried in
// the document header and, for compatibility, as a suffix of the document
// name (see Name).
package chunk

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

// DefaultThreshold is the cumulative pre-encoding payload at which a new
// chunk is started. Base64 expands 700,000 bytes to ~933KB which leaves room
// for document overhead below a ~1MB document limit.
const DefaultThreshold = 700_000

var (
	// ErrClosed is returned when writing to a finalized Writer.
	ErrClosed = errors.New("chunk: writer closed")

	// ErrBlockTooLarge is returned when a single block exceeds the threshold.
	ErrBlockTooLarge = errors.New("chunk: block larger than rollover threshold")

	// ErrOutOfOrder is returned when a Source yields chunks out of sequence.
	ErrOutOfOrder = errors.New("chunk: chunk out of order")

	// ErrMissing is returned when a chunk set has a gap in its sequence.
	ErrMissing = errors.New("chunk: missing chunk")

	// ErrDuplicate is returned when a chunk set holds a sequence number twice.
	ErrDuplicate = errors.New("chunk: duplicate chunk")
)

// Chunk is an ordered sequence of text records.
type Chunk struct {
	// Seq is the 1-based position of the chunk in its set.
	Seq int
	// Records holds one encoded read unit per entry.
	Records []string
	// Payload is the pre-encoding size of Records in bytes.
	Payload int
}

// Sink persists finalized chunks. A chunk passed to Persist is never
// modified afterwards.
type Sink interface {
	Persist(c *Chunk) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(c *Chunk) error

// Persist calls f(c).
func (f SinkFunc) Persist(c *Chunk) error { return f(c) }

// Collector is a Sink that keeps chunks in memory.
type Collector struct {
	Chunks []*Chunk
}

// Persist appends c.
func (col *Collector) Persist(c *Chunk) error {
	col.Chunks = append(col.Chunks, c)
	return nil
}

// Source yields chunks in ascending sequence order.
// Next returns io.EOF once the set is exhausted.
type Source interface {
	Next() (*Chunk, error)
}

type sliceSource struct {
	chunks []*Chunk
}

// SliceSource returns a Source over chunks, in the given order.
func SliceSource(chunks ...*Chunk) Source {
	return &sliceSource{chunks: chunks}
}

func (s *sliceSource) Next() (*Chunk, error) {
	if len(s.chunks) == 0 {
		return nil, io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

// Name returns the storage name of chunk seq of source: "<source><seq>".
func Name(source string, seq int) string {
	return source + strconv.Itoa(seq)
}

// SeqFromName recovers the sequence number from a name built by Name.
func SeqFromName(source, name string) (int, error) {
	suffix, ok := strings.CutPrefix(name, source)
	if !ok || suffix == "" {
		return 0, fmt.Errorf("chunk name %q does not belong to %q", name, source)
	}
	seq, err := strconv.Atoi(suffix)
	if err != nil || seq < 1 || strconv.Itoa(seq) != suffix {
		return 0, fmt.Errorf("chunk name %q has no sequence suffix", name)
	}
	return seq, nil
}

// Order sorts items by sequence number and checks that the numbers are
// exactly 1..len(items).
func Order[T any](items []T, seq func(T) int) error {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(seq(a), seq(b))
	})
	for i, item := range items {
		switch got := seq(item); {
		case got == i+1:
		case got < i+1:
			return fmt.Errorf("%w: %d", ErrDuplicate, got)
		default:
			return fmt.Errorf("%w: %d", ErrMissing, i+1)
		}
	}
	return nil
}
