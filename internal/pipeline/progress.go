package pipeline

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Progress phases.
const (
	PhaseEncode   = "encode"
	PhaseUpload   = "upload"
	PhaseDownload = "download"
	PhaseDecode   = "decode"
	PhaseDone     = "done"
	PhaseError    = "error"
)

// Progress tracks transform progress.
type Progress struct {
	Phase       string
	Name        string
	Bytes       int64
	BytesTotal  int64
	Chunks      int
	ChunksTotal int
	Records     int
	StartTime   time.Time
	Error       error
}

// ProgressFunc is called with progress updates.
type ProgressFunc func(Progress)

// progressReader wraps an io.Reader to track bytes read.
type progressReader struct {
	r    io.Reader
	read *atomic.Int64
}

func newProgressReader(r io.Reader, counter *atomic.Int64) *progressReader {
	return &progressReader{r: r, read: counter}
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	pr.read.Add(int64(n))
	return n, err
}

// progressWriter wraps an io.Writer to track bytes written.
type progressWriter struct {
	w       io.Writer
	written *atomic.Int64
}

func newProgressWriter(w io.Writer, counter *atomic.Int64) *progressWriter {
	return &progressWriter{w: w, written: counter}
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written.Add(int64(n))
	return n, err
}

// FormatBytes formats bytes as human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats duration as human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// DefaultProgressFunc prints progress to stdout.
func DefaultProgressFunc(p Progress) {
	switch p.Phase {
	case PhaseEncode:
		fmt.Printf("\r[Encode] %s read, %d chunks", FormatBytes(p.Bytes), p.Chunks)
	case PhaseUpload:
		fmt.Printf("\r[Upload] %d / %d chunks", p.Chunks, p.ChunksTotal)
	case PhaseDownload:
		fmt.Printf("\r[Download] %d / %d chunks", p.Chunks, p.ChunksTotal)
	case PhaseDecode:
		fmt.Printf("\r[Decode] %d chunks, %s written", p.Chunks, FormatBytes(p.Bytes))
	case PhaseDone:
		elapsed := time.Since(p.StartTime)
		fmt.Printf("\n[Done] %s: %s in %d chunks (%s)\n",
			p.Name, FormatBytes(p.Bytes), p.Chunks, FormatDuration(elapsed))
	case PhaseError:
		fmt.Printf("\n[Error] %v\n", p.Error)
	}
}
