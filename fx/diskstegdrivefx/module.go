// Package diskstegdrivefx provides an fx module for a disk-backed stegdrive client.
package diskstegdrivefx

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/arman-k/stegdrive"
	"github.com/arman-k/stegdrive/internal/stats"
	"github.com/arman-k/stegdrive/internal/stats/logger"
	"github.com/arman-k/stegdrive/internal/store/cachedstore"
	"github.com/arman-k/stegdrive/internal/store/cachedstore/cachestrategy/lru"
	"github.com/arman-k/stegdrive/internal/store/cachedstore/memory"
	"github.com/arman-k/stegdrive/internal/store/diskstore"
)

// Config holds configuration for the disk-backed stegdrive client.
type Config struct {
	// DataDir is the directory holding chunk sets. It is created if missing.
	DataDir string

	// StagingDir is where transfers create scratch directories.
	// Default is the system temporary directory.
	StagingDir string

	// Codec names the compression codec for uploads. Default is zlib.
	Codec string

	// Threshold is the payload bytes per document. Default is 700000.
	Threshold int

	// CacheSize is the number of fetched documents to cache in memory.
	// Zero disables the cache.
	CacheSize int
}

// Module provides a disk-backed stegdrive client.
// Requires a Config and a *zap.Logger to be provided.
var Module = fx.Module("diskstegdrive",
	fx.Provide(
		newStatsCollector,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("stegdrive"))
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *stegdrive.Client
}

func newClient(p Params) (Result, error) {
	if err := os.MkdirAll(p.Config.DataDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("creating data directory: %w", err)
	}
	baseStore, err := diskstore.New(p.Config.DataDir)
	if err != nil {
		return Result{}, err
	}

	cd, err := stegdrive.CodecByName(p.Config.Codec)
	if err != nil {
		return Result{}, err
	}

	opts := []stegdrive.Option{
		stegdrive.WithCodec(cd),
		stegdrive.WithStagingDir(p.Config.StagingDir),
		stegdrive.WithStats(p.Collector),
		stegdrive.WithLogger(p.Logger),
	}
	if p.Config.Threshold > 0 {
		opts = append(opts, stegdrive.WithThreshold(p.Config.Threshold))
	}

	if p.Config.CacheSize > 0 {
		lruStrategy, err := lru.New(p.Config.CacheSize)
		if err != nil {
			return Result{}, err
		}
		opts = append(opts, stegdrive.WithStore(cachedstore.New(baseStore, memory.New(lruStrategy, p.Collector))))
	} else {
		opts = append(opts, stegdrive.WithStore(baseStore))
	}

	client, err := stegdrive.New(opts...)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return Result{Client: client}, nil
}
