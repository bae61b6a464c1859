package stegdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arman-k/stegdrive/internal/chunk"
	"github.com/arman-k/stegdrive/internal/codec"
	"github.com/arman-k/stegdrive/internal/document"
	"github.com/arman-k/stegdrive/internal/fault"
	"github.com/arman-k/stegdrive/internal/manifest"
	"github.com/arman-k/stegdrive/internal/pipeline"
	"github.com/arman-k/stegdrive/internal/staging"
	"github.com/arman-k/stegdrive/internal/stats"
	"github.com/arman-k/stegdrive/internal/store"
	"github.com/arman-k/stegdrive/internal/store/diskstore"
	"github.com/arman-k/stegdrive/internal/textcodec"
)

// ErrSizeMismatch is returned when a restored file does not have the size
// recorded in its manifest.
var ErrSizeMismatch = errors.New("stegdrive: restored size does not match manifest")

// Download restores chunk set name to destDir/name and returns the path.
// The file is decoded into destDir/name.tmp and renamed once complete; on
// failure nothing is left behind.
func (c *Client) Download(ctx context.Context, name, destDir string) (path string, err error) {
	if err := store.ValidateName(name); err != nil {
		return "", err
	}

	path = filepath.Join(destDir, name)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", fault.IO("creating output", err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if _, err = c.DownloadTo(ctx, name, f); err != nil {
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", fault.IO("closing output", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return "", fault.IO("renaming output", err)
	}
	return path, nil
}

// DownloadTo restores chunk set name into w.
//
// The codec and encoding come from the chunk set's manifest. Chunk sets
// stored without a manifest are decoded with the client's configuration.
func (c *Client) DownloadTo(ctx context.Context, name string, w io.Writer) (m *Manifest, err error) {
	st, err := c.store(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.ValidateName(name); err != nil {
		return nil, err
	}

	start := time.Now()
	log := c.logger.With(zap.String("name", name))
	defer func() {
		if err != nil {
			c.stats.IncCounter(stats.MetricFailures, 1)
			c.report(Progress{Phase: pipeline.PhaseError, Name: name, Error: err})
			log.Error("download failed", zap.Error(err))
		}
	}()

	objs, err := st.List(ctx, name)
	if err != nil {
		return nil, fault.Remote("listing chunk set", err)
	}
	if len(objs) == 0 {
		return nil, fault.Remote("listing chunk set", ErrNotFound)
	}

	dir, err := staging.New(c.stagingDir, "stegdrive-download-*")
	if err != nil {
		return nil, fault.IO("staging", err)
	}
	defer func() {
		if rerr := dir.Remove(); rerr != nil {
			log.Warn("removing staging dir", zap.Error(rerr))
		}
	}()

	// Fetch every object into staging.
	var files []string
	for i, obj := range objs {
		data, err := st.Fetch(ctx, obj.ID)
		if err != nil {
			return nil, fault.Remote("fetching "+obj.Name, err)
		}
		if err := dir.WriteFile(obj.Name, data); err != nil {
			return nil, fault.IO("staging "+obj.Name, err)
		}
		c.stats.IncCounter(stats.MetricObjectFetches, 1)
		if obj.Name != manifest.Filename {
			files = append(files, obj.Name)
		}
		c.report(Progress{
			Phase:       pipeline.PhaseDownload,
			Name:        name,
			Chunks:      i + 1,
			ChunksTotal: len(objs),
			StartTime:   start,
		})
	}

	res, m, err := c.decodeDir(ctx, dir.Path(), name, files, w)
	if err != nil {
		return nil, err
	}

	c.stats.IncCounter(stats.MetricDownloads, 1)
	c.stats.IncCounter(stats.MetricChunksRead, int64(res.Chunks))
	c.stats.IncCounter(stats.MetricSourceBytes, res.SourceBytes)
	c.stats.IncCounter(stats.MetricCompressedBytes, res.CompressedBytes)
	c.stats.ObserveHistogram(stats.MetricDuration, time.Since(start).Seconds())

	c.report(Progress{
		Phase:     pipeline.PhaseDone,
		Name:      name,
		Bytes:     res.SourceBytes,
		Chunks:    res.Chunks,
		Records:   res.Records,
		StartTime: start,
	})
	log.Info("downloaded",
		zap.Int("chunks", res.Chunks),
		zap.Int64("size", res.SourceBytes),
		zap.Duration("elapsed", time.Since(start)),
	)
	return m, nil
}

// DecodeDir restores a chunk set whose documents are files in a local
// directory, such as a folder exported from the remote store by hand.
// A manifest.json in dir is honored when present. Files a disk store is
// still writing are skipped.
func (c *Client) DecodeDir(ctx context.Context, dir string, w io.Writer) (*Manifest, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fault.IO("reading directory", err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && e.Name() != manifest.Filename && !strings.HasPrefix(e.Name(), diskstore.TempPrefix) {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fault.Codec("reading directory", pipeline.ErrEmptySet)
	}

	_, m, err := c.decodeDir(ctx, dir, filepath.Base(dir), files, w)
	return m, err
}

// stagedDoc is a document file and its position in the chunk set.
type stagedDoc struct {
	file string
	seq  int
}

// decodeDir orders the documents in dir and decodes them into w.
func (c *Client) decodeDir(ctx context.Context, dir, name string, files []string, w io.Writer) (pipeline.Result, *Manifest, error) {
	m, err := readManifest(dir)
	if err != nil {
		return pipeline.Result{}, nil, err
	}
	if m != nil && m.Source != "" {
		name = m.Source
	}

	// Headers give the order; names are the fallback for legacy documents.
	docs := make([]stagedDoc, 0, len(files))
	mode := chunk.Counted
	headerEncoding := ""
	for _, file := range files {
		d, err := readHeader(filepath.Join(dir, file))
		if err != nil {
			return pipeline.Result{}, nil, err
		}
		seq := d.Seq
		if d.Legacy {
			mode = chunk.Sentinel
			seq, err = chunk.SeqFromName(name, strings.TrimSuffix(file, document.Extension))
			if err != nil {
				return pipeline.Result{}, nil, fault.Codec("ordering chunk set", err)
			}
		} else if headerEncoding == "" {
			headerEncoding = d.Encoding
		}
		docs = append(docs, stagedDoc{file: file, seq: seq})
	}
	if err := chunk.Order(docs, func(d stagedDoc) int { return d.seq }); err != nil {
		return pipeline.Result{}, nil, fault.Codec("ordering chunk set", err)
	}
	if m != nil && m.Chunks != len(docs) {
		return pipeline.Result{}, nil, fault.Codec("ordering chunk set",
			fmt.Errorf("%w: manifest lists %d chunks, found %d", chunk.ErrMissing, m.Chunks, len(docs)))
	}

	cfg := c.pipelineConfig(name)
	cfg.EndMode = mode
	if err := c.resolveFormat(&cfg, m, headerEncoding); err != nil {
		return pipeline.Result{}, nil, err
	}

	src := &docSource{dir: dir, docs: docs}
	res, err := pipeline.Decode(ctx, src, w, cfg)
	if err != nil {
		return res, nil, err
	}

	if m == nil {
		m = &Manifest{
			Version:        manifest.CurrentVersion,
			Source:         name,
			Size:           res.SourceBytes,
			CompressedSize: res.CompressedBytes,
			Chunks:         res.Chunks,
			Records:        res.Records,
			Codec:          cfg.Codec.Name(),
			Encoding:       cfg.Encoding.Name(),
		}
	} else if m.Size != res.SourceBytes {
		return res, nil, fault.Codec("verifying output",
			fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, res.SourceBytes, m.Size))
	}
	return res, m, nil
}

// resolveFormat picks the codec and encoding for decoding: the manifest
// first, then the document headers, then the client's configuration.
func (c *Client) resolveFormat(cfg *pipeline.Config, m *Manifest, headerEncoding string) error {
	encName := headerEncoding
	var cd codec.Codec
	if m != nil {
		var err error
		if cd, err = CodecByName(m.Codec); err != nil {
			return fault.Codec("reading manifest", err)
		}
		encName = m.Encoding
	}
	if cd != nil {
		cfg.Codec = cd
	}
	if encName != "" {
		enc, err := textcodec.ByName(encName)
		if err != nil {
			return fault.Codec("reading encoding", err)
		}
		cfg.Encoding = enc
	}
	return nil
}

func readManifest(dir string) (*Manifest, error) {
	m, err := manifest.Read(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fault.Codec("reading manifest", err)
	}
	return m, nil
}

func readHeader(path string) (*document.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.IO("opening document", err)
	}
	defer f.Close()

	d, err := document.ReadHeader(f)
	if err != nil {
		return nil, fault.Codec("reading "+filepath.Base(path), err)
	}
	return d, nil
}

// docSource loads ordered documents one at a time.
type docSource struct {
	dir  string
	docs []stagedDoc
}

func (s *docSource) Next() (*chunk.Chunk, error) {
	if len(s.docs) == 0 {
		return nil, io.EOF
	}
	next := s.docs[0]
	s.docs = s.docs[1:]

	f, err := os.Open(filepath.Join(s.dir, next.file))
	if err != nil {
		return nil, fault.IO("opening document", err)
	}
	defer f.Close()

	d, err := document.Read(f)
	if err != nil {
		return nil, fault.Codec("reading "+next.file, err)
	}
	c := d.Chunk()
	c.Seq = next.seq
	return c, nil
}
