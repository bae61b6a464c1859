// Package document renders chunks as plain-text documents.
//
// A document starts with a MIME-style header, then holds one record per
// line (paragraph) and ends with an empty paragraph:
//
//	Stegdrive-Version: 1
//	Source: photo.jpg
//	Sequence: 2
//	Records: 911
//	Payload: 699648
//	Encoding: base64
//
//	eJzt3U1v...
//	...
//
// The header carries the sequence number and the record count, so neither
// the document name nor the shape of the data is needed to order the chunk
// set or to find the end of a chunk. Documents without the header (legacy
// documents) are read as bare paragraphs and must be ended by the first
// empty paragraph.
package document

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/arman-k/stegdrive/internal/chunk"
)

// Version is the header format version written by Write.
const Version = 1

// Extension is the file extension used for staged documents.
const Extension = ".txt"

const (
	headerVersion  = "Stegdrive-Version"
	headerSource   = "Source"
	headerSequence = "Sequence"
	headerRecords  = "Records"
	headerPayload  = "Payload"
	headerEncoding = "Encoding"
)

var (
	// ErrMalformed is returned for documents that cannot be parsed.
	ErrMalformed = errors.New("document: malformed document")

	// ErrTruncated is returned when a document holds fewer records than
	// its header announces.
	ErrTruncated = errors.New("document: truncated document")
)

// Document is one chunk in its storage form.
type Document struct {
	Source   string
	Seq      int
	Encoding string
	Payload  int
	Records  []string

	// Legacy is set for documents read without a header. Their Seq is 0
	// and their end is marked only by an empty paragraph.
	Legacy bool

	count int
}

// FromChunk wraps c for storage.
func FromChunk(source, encoding string, c *chunk.Chunk) *Document {
	return &Document{
		Source:   source,
		Seq:      c.Seq,
		Encoding: encoding,
		Payload:  c.Payload,
		Records:  c.Records,
		count:    len(c.Records),
	}
}

// Chunk returns the chunk carried by d.
func (d *Document) Chunk() *chunk.Chunk {
	return &chunk.Chunk{Seq: d.Seq, Records: d.Records, Payload: d.Payload}
}

// Count returns the number of records announced by the header. For a
// document read with ReadHeader it is known before the records are loaded.
func (d *Document) Count() int {
	if d.Legacy {
		return len(d.Records)
	}
	return d.count
}

// EndMode returns how a chunk reader must detect the end of this document.
func (d *Document) EndMode() chunk.EndMode {
	if d.Legacy {
		return chunk.Sentinel
	}
	return chunk.Counted
}

// Write renders d to w.
func Write(w io.Writer, d *Document) error {
	if strings.ContainsAny(d.Source, "\r\n") {
		return fmt.Errorf("%w: source name contains a line break", ErrMalformed)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s: %d\n", headerVersion, Version)
	fmt.Fprintf(bw, "%s: %s\n", headerSource, d.Source)
	fmt.Fprintf(bw, "%s: %d\n", headerSequence, d.Seq)
	fmt.Fprintf(bw, "%s: %d\n", headerRecords, len(d.Records))
	fmt.Fprintf(bw, "%s: %d\n", headerPayload, d.Payload)
	fmt.Fprintf(bw, "%s: %s\n", headerEncoding, d.Encoding)
	bw.WriteString("\n")

	for i, rec := range d.Records {
		if strings.ContainsAny(rec, "\r\n") {
			return fmt.Errorf("%w: record %d contains a line break", ErrMalformed, i+1)
		}
		bw.WriteString(rec)
		bw.WriteString("\n")
	}
	bw.WriteString("\n")

	return bw.Flush()
}

// Marshal renders d into a byte slice.
func Marshal(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read parses a whole document.
func Read(r io.Reader) (*Document, error) {
	tp := textproto.NewReader(bufio.NewReader(r))

	d, err := readHeader(tp)
	if err != nil {
		return nil, err
	}

	if d.Legacy {
		for {
			line, err := tp.ReadLine()
			if err == io.EOF {
				return d, nil
			}
			if err != nil {
				return nil, fmt.Errorf("reading paragraph: %w", err)
			}
			d.Records = append(d.Records, line)
		}
	}

	d.Records = make([]string, 0, d.count)
	for len(d.Records) < d.count {
		line, err := tp.ReadLine()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %d of %d records", ErrTruncated, len(d.Records), d.count)
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		d.Records = append(d.Records, line)
	}
	return d, nil
}

// Unmarshal parses a document held in memory.
func Unmarshal(data []byte) (*Document, error) {
	return Read(bytes.NewReader(data))
}

// ReadHeader parses only the header of a document. Records is left nil.
func ReadHeader(r io.Reader) (*Document, error) {
	return readHeader(textproto.NewReader(bufio.NewReader(r)))
}

func readHeader(tp *textproto.Reader) (*Document, error) {
	prefix, err := tp.R.Peek(len(headerVersion) + 1)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if string(prefix) != headerVersion+":" {
		return &Document{Legacy: true}, nil
	}

	h, err := tp.ReadMIMEHeader()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	version, err := headerInt(h, headerVersion)
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, version)
	}

	d := &Document{
		Source:   h.Get(headerSource),
		Encoding: h.Get(headerEncoding),
	}
	if d.Seq, err = headerInt(h, headerSequence); err != nil {
		return nil, err
	}
	if d.count, err = headerInt(h, headerRecords); err != nil {
		return nil, err
	}
	if d.Payload, err = headerInt(h, headerPayload); err != nil {
		return nil, err
	}
	if d.Seq < 1 {
		return nil, fmt.Errorf("%w: sequence %d", ErrMalformed, d.Seq)
	}
	return d, nil
}

func headerInt(h textproto.MIMEHeader, key string) (int, error) {
	v := h.Get(key)
	if v == "" {
		return 0, fmt.Errorf("%w: missing %s header", ErrMalformed, key)
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: invalid %s header %q", ErrMalformed, key, v)
	}
	return n, nil
}
