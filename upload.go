package stegdrive

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/arman-k/stegdrive/internal/chunk"
	"github.com/arman-k/stegdrive/internal/document"
	"github.com/arman-k/stegdrive/internal/fault"
	"github.com/arman-k/stegdrive/internal/manifest"
	"github.com/arman-k/stegdrive/internal/pipeline"
	"github.com/arman-k/stegdrive/internal/staging"
	"github.com/arman-k/stegdrive/internal/stats"
	"github.com/arman-k/stegdrive/internal/store"
)

// Upload stores the local file at path as a chunk set named after the
// file's base name.
func (c *Client) Upload(ctx context.Context, path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.IO("opening source", err)
	}
	defer f.Close()

	return c.UploadReader(ctx, filepath.Base(path), f)
}

// UploadReader stores everything read from r as chunk set name.
//
// The chunk set is first encoded into a local staging directory, then its
// documents are pushed in sequence order followed by the manifest. If any
// step fails, documents already pushed are deleted again and the staging
// directory is removed.
func (c *Client) UploadReader(ctx context.Context, name string, r io.Reader) (m *Manifest, err error) {
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
			log.Error("upload failed", zap.Error(err))
		}
	}()

	existing, err := st.List(ctx, name)
	if err != nil {
		return nil, fault.Remote("checking chunk set", err)
	}
	if len(existing) > 0 {
		return nil, fault.Remote("checking chunk set", ErrExists)
	}

	dir, err := staging.New(c.stagingDir, "stegdrive-upload-*")
	if err != nil {
		return nil, fault.IO("staging", err)
	}
	defer func() {
		if rerr := dir.Remove(); rerr != nil {
			log.Warn("removing staging dir", zap.Error(rerr))
		}
	}()

	// Encode into staged documents.
	var staged []string
	sink := chunk.SinkFunc(func(ch *chunk.Chunk) error {
		doc := document.FromChunk(name, c.encoding.Name(), ch)
		data, err := document.Marshal(doc)
		if err != nil {
			return fault.Codec("rendering document", err)
		}
		file := chunk.Name(name, ch.Seq) + document.Extension
		if err := dir.WriteFile(file, data); err != nil {
			return fault.IO("staging document", err)
		}
		staged = append(staged, file)
		return nil
	})

	res, err := pipeline.Encode(ctx, r, sink, c.pipelineConfig(name))
	if err != nil {
		return nil, err
	}
	log.Debug("chunk set staged",
		zap.Int("chunks", res.Chunks),
		zap.Int64("sourceBytes", res.SourceBytes),
		zap.Int64("compressedBytes", res.CompressedBytes),
	)

	m = &Manifest{
		Version:        manifest.CurrentVersion,
		Source:         name,
		Size:           res.SourceBytes,
		CompressedSize: res.CompressedBytes,
		Chunks:         res.Chunks,
		Records:        res.Records,
		Codec:          c.codec.Name(),
		Encoding:       c.encoding.Name(),
		ReadUnit:       c.readUnit,
		Threshold:      c.threshold,
		CreatedAt:      time.Now().UTC(),
	}

	if err := c.push(ctx, st, dir, name, staged, m, start); err != nil {
		return nil, err
	}

	c.stats.IncCounter(stats.MetricUploads, 1)
	c.stats.IncCounter(stats.MetricChunksWritten, int64(res.Chunks))
	c.stats.IncCounter(stats.MetricSourceBytes, res.SourceBytes)
	c.stats.IncCounter(stats.MetricCompressedBytes, res.CompressedBytes)
	c.stats.ObserveHistogram(stats.MetricRatio, m.Ratio())
	c.stats.ObserveHistogram(stats.MetricDuration, time.Since(start).Seconds())

	c.report(Progress{
		Phase:     pipeline.PhaseDone,
		Name:      name,
		Bytes:     res.SourceBytes,
		Chunks:    res.Chunks,
		Records:   res.Records,
		StartTime: start,
	})
	log.Info("uploaded",
		zap.Int("chunks", m.Chunks),
		zap.Int64("size", m.Size),
		zap.Float64("ratio", m.Ratio()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return m, nil
}

// push uploads the staged documents and then the manifest. On failure it
// deletes whatever it created.
func (c *Client) push(ctx context.Context, st store.Store, dir *staging.Dir, name string, staged []string, m *Manifest, start time.Time) (err error) {
	var created []string
	defer func() {
		if err != nil {
			c.rollback(st, name, created)
		}
	}()

	for i, file := range staged {
		data, err := dir.ReadFile(file)
		if err != nil {
			return fault.IO("reading staged document", err)
		}
		obj, err := st.Create(ctx, name, chunk.Name(name, i+1), data)
		if err != nil {
			return fault.Remote("uploading "+file, err)
		}
		created = append(created, obj.ID)
		c.report(Progress{
			Phase:       pipeline.PhaseUpload,
			Name:        name,
			Chunks:      i + 1,
			ChunksTotal: len(staged),
			StartTime:   start,
		})
	}

	data, err := manifest.Marshal(m)
	if err != nil {
		return fault.Codec("rendering manifest", err)
	}
	obj, err := st.Create(ctx, name, manifest.Filename, data)
	if err != nil {
		return fault.Remote("uploading manifest", err)
	}
	created = append(created, obj.ID)
	return nil
}

// rollback deletes objects of a failed upload. It runs on a fresh context
// so a canceled upload still cleans up.
func (c *Client) rollback(st store.Store, name string, ids []string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for _, id := range slices.Backward(ids) {
		if err := st.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
			c.logger.Warn("rollback: deleting object",
				zap.String("name", name),
				zap.String("id", id),
				zap.Error(err),
			)
		}
	}
	if len(ids) > 0 {
		c.logger.Info("rolled back partial upload", zap.String("name", name), zap.Int("objects", len(ids)))
	}
}
