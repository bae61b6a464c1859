package pipeline

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/arman-k/stegdrive/internal/chunk"
	"github.com/arman-k/stegdrive/internal/codec/zstdcodec"
	"github.com/arman-k/stegdrive/internal/fault"
	"github.com/arman-k/stegdrive/internal/textcodec"
)

func randomBytes(n int, seed int64) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(b)
	return b
}

func encode(t *testing.T, data []byte, cfg Config) ([]*chunk.Chunk, Result) {
	t.Helper()
	var sink chunk.Collector
	res, err := Encode(context.Background(), bytes.NewReader(data), &sink, cfg)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return sink.Chunks, res
}

func decode(t *testing.T, chunks []*chunk.Chunk, cfg Config) []byte {
	t.Helper()
	var out bytes.Buffer
	if _, err := Decode(context.Background(), chunk.SliceSource(chunks...), &out, cfg); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return out.Bytes()
}

func TestEncodeDecode_RandomSource(t *testing.T) {
	// Random data does not compress, so 1.5 MB of it spans three chunks.
	data := randomBytes(1_500_000, 1)

	chunks, res := encode(t, data, Config{})
	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	if res.Chunks != 3 {
		t.Errorf("Result.Chunks = %d, want 3", res.Chunks)
	}
	if res.SourceBytes != int64(len(data)) {
		t.Errorf("Result.SourceBytes = %d, want %d", res.SourceBytes, len(data))
	}

	for i, c := range chunks {
		if c.Seq != i+1 {
			t.Errorf("chunks[%d].Seq = %d, want %d", i, c.Seq, i+1)
		}
		if c.Payload > chunk.DefaultThreshold {
			t.Errorf("chunk %d payload = %d, exceeds threshold", c.Seq, c.Payload)
		}
		for j, r := range c.Records[:len(c.Records)-1] {
			if len(r) != 1024 {
				t.Fatalf("chunk %d record %d length = %d, want 1024", c.Seq, j, len(r))
			}
		}
	}

	if got := decode(t, chunks, Config{}); !bytes.Equal(got, data) {
		t.Fatalf("round-trip mismatch: got %d bytes, want %d", len(got), len(data))
	}
}

func TestEncodeDecode_EmptySource(t *testing.T) {
	chunks, res := encode(t, nil, Config{})
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(chunks))
	}
	if len(chunks[0].Records) != 0 || res.Records != 0 {
		t.Errorf("records = %d, want 0", len(chunks[0].Records))
	}

	var out bytes.Buffer
	res, err := Decode(context.Background(), chunk.SliceSource(chunks...), &out, Config{})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("decoded %d bytes, want 0", out.Len())
	}
	if res.Chunks != 1 {
		t.Errorf("Result.Chunks = %d, want 1", res.Chunks)
	}
}

func TestEncodeDecode_Configurations(t *testing.T) {
	data := append(randomBytes(40_000, 2), bytes.Repeat([]byte("stegdrive"), 20_000)...)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"defaults", Config{}},
		{"small threshold", Config{Threshold: 5 * DefaultReadUnit}},
		{"threshold equals unit", Config{Threshold: DefaultReadUnit}},
		{"ascii85", Config{Encoding: textcodec.ASCII85, Threshold: 10_000}},
		{"zstd", Config{Codec: zstdcodec.New(), Threshold: 10_000}},
		{"odd sizes", Config{BlockSize: 333, ReadUnit: 500, Threshold: 1_999}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, res := encode(t, data, tt.cfg)
			if res.Chunks != len(chunks) {
				t.Errorf("Result.Chunks = %d, persisted %d", res.Chunks, len(chunks))
			}
			threshold := tt.cfg.withDefaults().Threshold
			var payload int64
			for _, c := range chunks {
				if c.Payload > threshold {
					t.Errorf("chunk %d payload = %d, exceeds %d", c.Seq, c.Payload, threshold)
				}
				payload += int64(c.Payload)
			}
			if payload != res.CompressedBytes {
				t.Errorf("total payload = %d, want %d", payload, res.CompressedBytes)
			}
			if got := decode(t, chunks, tt.cfg); !bytes.Equal(got, data) {
				t.Fatal("round-trip mismatch")
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{}).Validate(); err != nil {
		t.Errorf("Validate() default error = %v", err)
	}
	if err := (Config{Threshold: 100}).Validate(); err == nil {
		t.Error("Validate() with threshold below read unit should fail")
	}
	if _, err := Encode(context.Background(), bytes.NewReader(nil), &chunk.Collector{}, Config{Threshold: 100}); err == nil {
		t.Error("Encode() with threshold below read unit should fail")
	}
}

func TestEncode_SinkError(t *testing.T) {
	boom := fault.Remote("uploading", errors.New("503"))
	sink := chunk.SinkFunc(func(c *chunk.Chunk) error { return boom })

	_, err := Encode(context.Background(), bytes.NewReader(randomBytes(100_000, 3)), sink, Config{Threshold: 10_000})
	if !errors.Is(err, fault.ErrRemote) {
		t.Errorf("Encode() error = %v, want ErrRemote", err)
	}
}

func TestEncode_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Encode(ctx, bytes.NewReader(randomBytes(100_000, 4)), &chunk.Collector{}, Config{Threshold: 10_000})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Encode() error = %v, want context.Canceled", err)
	}
}

func TestDecode_Errors(t *testing.T) {
	chunks, _ := encode(t, randomBytes(50_000, 5), Config{Threshold: 10_000})
	if len(chunks) < 3 {
		t.Fatalf("chunks = %d, want at least 3", len(chunks))
	}

	swapped := append([]*chunk.Chunk(nil), chunks...)
	swapped[0], swapped[1] = swapped[1], swapped[0]

	corrupt := *chunks[len(chunks)-1]
	corrupt.Records = append([]string(nil), corrupt.Records...)
	corrupt.Records[0] = "%%%"
	corrupted := append(append([]*chunk.Chunk(nil), chunks[:len(chunks)-1]...), &corrupt)

	tests := []struct {
		name   string
		chunks []*chunk.Chunk
		want   error
	}{
		{"no chunks", nil, ErrEmptySet},
		{"out of order", swapped, chunk.ErrOutOfOrder},
		{"missing tail", chunks[:len(chunks)-1], fault.ErrCodec},
		{"malformed record", corrupted, textcodec.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := Decode(context.Background(), chunk.SliceSource(tt.chunks...), &out, Config{})
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, fault.ErrCodec) {
				t.Errorf("Decode() error = %v, want ErrCodec", err)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var phases []Progress
	cfg := Config{Threshold: 10_000, Name: "x", Progress: func(p Progress) { phases = append(phases, p) }}

	chunks, res := encode(t, randomBytes(30_000, 6), cfg)
	if len(phases) != res.Chunks {
		t.Fatalf("encode progress calls = %d, want %d", len(phases), res.Chunks)
	}
	last := phases[len(phases)-1]
	if last.Phase != PhaseEncode || last.Chunks != res.Chunks || last.Name != "x" {
		t.Errorf("last progress = %+v", last)
	}

	phases = nil
	decode(t, chunks, cfg)
	if len(phases) != len(chunks) {
		t.Errorf("decode progress calls = %d, want %d", len(phases), len(chunks))
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{700_000, "683.6 KB"},
		{1 << 30, "1.0 GB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
