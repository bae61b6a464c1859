// Package stegdrive stores arbitrary files in a remote object store as
// ordinary-looking text documents, and restores them byte for byte.
//
// A file is compressed, split into fixed-size read units, each unit encoded
// as one line of text, and the lines grouped into documents of bounded size.
// The documents of one file form a chunk set stored in a folder named after
// the file, together with a manifest.
//
// Example usage:
//
//	client, err := stegdrive.New(
//	    stegdrive.WithStore(st),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	if _, err := client.Upload(ctx, "/path/to/photo.jpg"); err != nil {
//	    log.Fatal(err)
//	}
//	path, err := client.Download(ctx, "photo.jpg", "/tmp/restore")
package stegdrive

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/arman-k/stegdrive/internal/codec"
	"github.com/arman-k/stegdrive/internal/fault"
	"github.com/arman-k/stegdrive/internal/manifest"
	"github.com/arman-k/stegdrive/internal/pipeline"
	"github.com/arman-k/stegdrive/internal/session"
	"github.com/arman-k/stegdrive/internal/stats"
	"github.com/arman-k/stegdrive/internal/store"
	"github.com/arman-k/stegdrive/internal/textcodec"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrNotFound indicates the chunk set does not exist in the store.
	ErrNotFound = errors.New("stegdrive: chunk set not found")

	// ErrClosed indicates the client has been closed.
	ErrClosed = errors.New("stegdrive: client closed")

	// ErrNoStore indicates no store or session was provided.
	ErrNoStore = errors.New("stegdrive: no store provided")

	// ErrExists indicates a chunk set with the same name is already stored.
	ErrExists = errors.New("stegdrive: chunk set already exists")
)

// Failure kinds. Every error returned by an upload or download matches
// exactly one of them with errors.Is.
var (
	// ErrIO marks local file or stream failures.
	ErrIO = fault.ErrIO

	// ErrCodec marks malformed compressed data, malformed records and
	// broken chunk sets.
	ErrCodec = fault.ErrCodec

	// ErrRemote marks failures reported by the remote store.
	ErrRemote = fault.ErrRemote
)

// Manifest describes a stored chunk set.
type Manifest = manifest.Manifest

// Progress reports transfer progress.
type Progress = pipeline.Progress

// ProgressFunc is called with progress updates.
type ProgressFunc = pipeline.ProgressFunc

// DefaultProgressFunc prints progress to stdout.
var DefaultProgressFunc ProgressFunc = pipeline.DefaultProgressFunc

// Client uploads and downloads chunk sets.
// Transfers are blocking; a Client may be shared but each transfer runs on
// the calling goroutine.
type Client struct {
	session    *session.Session
	codec      codec.Codec
	encoding   textcodec.Encoding
	threshold  int
	readUnit   int
	blockSize  int
	stagingDir string
	stats      stats.Collector
	logger     *zap.Logger
	progress   ProgressFunc
	closed     atomic.Bool
}

// New creates a new Client with the given options.
// A store or a session is required; everything else has defaults.
func New(opts ...Option) (*Client, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	sess := cfg.session
	if sess == nil && cfg.store != nil {
		sess = session.Static(cfg.store)
	}
	if sess == nil {
		return nil, ErrNoStore
	}

	c := &Client{
		session:    sess,
		codec:      cfg.codec,
		encoding:   cfg.encoding,
		threshold:  cfg.threshold,
		readUnit:   cfg.readUnit,
		blockSize:  cfg.blockSize,
		stagingDir: cfg.stagingDir,
		stats:      cfg.stats,
		logger:     cfg.logger.Named("stegdrive"),
		progress:   cfg.progress,
	}

	if err := c.pipelineConfig("").Validate(); err != nil {
		return nil, fmt.Errorf("stegdrive: %w", err)
	}

	c.logger.Debug("client initialized",
		zap.String("codec", c.codec.Name()),
		zap.String("encoding", c.encoding.Name()),
		zap.Int("threshold", c.threshold),
		zap.Int("readUnit", c.readUnit),
	)

	return c, nil
}

// List returns the names of the stored chunk sets.
func (c *Client) List(ctx context.Context) ([]string, error) {
	st, err := c.store(ctx)
	if err != nil {
		return nil, err
	}

	folders, err := st.List(ctx, "")
	if err != nil {
		return nil, fault.Remote("listing chunk sets", err)
	}
	names := make([]string, len(folders))
	for i, f := range folders {
		names[i] = f.Name
	}
	return names, nil
}

// Stat returns the manifest of a stored chunk set. Chunk sets stored
// without a manifest return ErrNotFound wrapped with the store's error.
func (c *Client) Stat(ctx context.Context, name string) (*Manifest, error) {
	st, err := c.store(ctx)
	if err != nil {
		return nil, err
	}
	if err := store.ValidateName(name); err != nil {
		return nil, err
	}

	data, err := st.Fetch(ctx, store.Join(name, manifest.Filename))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fault.Remote("fetching manifest", fmt.Errorf("%w: %w", ErrNotFound, err))
		}
		return nil, fault.Remote("fetching manifest", err)
	}
	m, err := manifest.Unmarshal(data)
	if err != nil {
		return nil, fault.Codec("reading manifest", err)
	}
	return m, nil
}

// Delete removes every object of a chunk set.
func (c *Client) Delete(ctx context.Context, name string) error {
	st, err := c.store(ctx)
	if err != nil {
		return err
	}
	if err := store.ValidateName(name); err != nil {
		return err
	}

	objs, err := st.List(ctx, name)
	if err != nil {
		return fault.Remote("listing chunk set", err)
	}
	if len(objs) == 0 {
		return fault.Remote("deleting chunk set", ErrNotFound)
	}

	for _, obj := range objs {
		if err := st.Delete(ctx, obj.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fault.Remote("deleting "+obj.Name, err)
		}
	}

	c.logger.Info("chunk set deleted", zap.String("name", name), zap.Int("objects", len(objs)))
	return nil
}

// Close releases all resources associated with the client.
// After Close, the client should not be used.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	if err := c.session.Close(); err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	return nil
}

// store returns the session's current store.
func (c *Client) store(ctx context.Context) (store.Store, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	st, err := c.session.Store(ctx)
	if err != nil {
		return nil, fault.Remote("opening store", err)
	}
	return st, nil
}

// pipelineConfig returns the transform configuration for chunk set name.
func (c *Client) pipelineConfig(name string) pipeline.Config {
	return pipeline.Config{
		Codec:     c.codec,
		Encoding:  c.encoding,
		BlockSize: c.blockSize,
		ReadUnit:  c.readUnit,
		Threshold: c.threshold,
		Name:      name,
		Logger:    c.logger,
		Progress:  c.progress,
	}
}

func (c *Client) report(p Progress) {
	if c.progress != nil {
		c.progress(p)
	}
}
