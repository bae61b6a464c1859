// Package memorystegdrivefx provides an fx module for an in-memory stegdrive client.
// Useful for testing.
package memorystegdrivefx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/arman-k/stegdrive"
	"github.com/arman-k/stegdrive/internal/stats"
	"github.com/arman-k/stegdrive/internal/stats/logger"
	"github.com/arman-k/stegdrive/internal/store/memstore"
)

// Module provides an in-memory stegdrive client for testing.
// The backing *memstore.Store is provided too, for test setup.
// Requires a *zap.Logger to be provided.
var Module = fx.Module("memorystegdrive",
	fx.Provide(
		newStatsCollector,
		newMemStore,
		newClient,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("stegdrive"))
}

func newMemStore() *memstore.Store {
	return memstore.New()
}

// Params holds dependencies for creating the client.
type Params struct {
	fx.In

	Logger    *zap.Logger
	Collector stats.Collector
	Store     *memstore.Store
	Lifecycle fx.Lifecycle
}

// Result holds the provided client.
type Result struct {
	fx.Out

	Client *stegdrive.Client
}

func newClient(p Params) (Result, error) {
	client, err := stegdrive.New(
		stegdrive.WithStore(p.Store),
		stegdrive.WithStats(p.Collector),
		stegdrive.WithLogger(p.Logger),
	)
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
