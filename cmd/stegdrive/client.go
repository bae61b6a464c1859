package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/arman-k/stegdrive"
	"github.com/arman-k/stegdrive/internal/session"
	"github.com/arman-k/stegdrive/internal/stats"
	"github.com/arman-k/stegdrive/internal/stats/logger"
	promstats "github.com/arman-k/stegdrive/internal/stats/prometheus"
	"github.com/arman-k/stegdrive/internal/store"
	"github.com/arman-k/stegdrive/internal/store/cachedstore"
	"github.com/arman-k/stegdrive/internal/store/cachedstore/cachestrategy/lru"
	"github.com/arman-k/stegdrive/internal/store/cachedstore/memory"
	"github.com/arman-k/stegdrive/internal/store/diskstore"
	"github.com/arman-k/stegdrive/internal/store/gcsstore"
	"github.com/arman-k/stegdrive/internal/store/s3store"
)

// signalContext returns a context canceled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nInterrupted, cleaning up...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func newLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// openStore opens the backend selected by the global flags.
func openStore(ctx context.Context) (store.Store, error) {
	switch backend {
	case "disk":
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return diskstore.New(dataDir)

	case "s3":
		bucket, prefix, err := s3store.ParseURL(bucketURL)
		if err != nil {
			return nil, err
		}
		opts := []s3store.Option{s3store.WithPrefix(prefix)}
		if region != "" {
			opts = append(opts, s3store.WithRegion(region))
		}
		if endpoint != "" {
			opts = append(opts, s3store.WithEndpoint(endpoint))
		}
		return s3store.New(ctx, bucket, opts...)

	case "gcs":
		var opts []gcsstore.Option
		if endpoint != "" {
			opts = append(opts, gcsstore.WithEndpoint(endpoint))
		}
		return gcsstore.NewFromURL(ctx, bucketURL, opts...)

	default:
		return nil, fmt.Errorf("unknown backend: %s", backend)
	}
}

// cliClient bundles a client with what has to happen when the command ends.
type cliClient struct {
	*stegdrive.Client
	logger   *zap.Logger
	registry *prometheus.Registry
}

// newClient builds a client from the global flags. A nil st opens the
// configured backend.
func newClient(ctx context.Context, st store.Store) (*cliClient, error) {
	log, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	cc := &cliClient{logger: log}
	collector := stats.Discard
	switch {
	case metricsFile != "":
		cc.registry = prometheus.NewRegistry()
		collector = promstats.New(cc.registry)
	case verbose:
		collector = logger.New(log.Named("stegdrive"))
	}

	cd, err := stegdrive.CodecByName(codecName)
	if err != nil {
		return nil, err
	}
	enc, err := stegdrive.EncodingByName(encodingName)
	if err != nil {
		return nil, err
	}

	opts := []stegdrive.Option{
		stegdrive.WithCodec(cd),
		stegdrive.WithEncoding(enc),
		stegdrive.WithStagingDir(stagingDir),
		stegdrive.WithStats(collector),
		stegdrive.WithLogger(log),
	}
	if threshold > 0 {
		opts = append(opts, stegdrive.WithThreshold(threshold))
	}
	if !quiet {
		opts = append(opts, stegdrive.WithProgress(stegdrive.DefaultProgressFunc))
	}

	sess, err := openSession(ctx, st, collector, log)
	if err != nil {
		return nil, err
	}
	opts = append(opts, stegdrive.WithSession(sess))

	client, err := stegdrive.New(opts...)
	if err != nil {
		sess.Close()
		return nil, fmt.Errorf("creating client: %w", err)
	}
	cc.Client = client
	return cc, nil
}

func openSession(ctx context.Context, st store.Store, collector stats.Collector, log *zap.Logger) (*session.Session, error) {
	open := func(ctx context.Context) (store.Store, error) {
		if st != nil {
			return st, nil
		}
		s, err := openStore(ctx)
		if err != nil {
			return nil, fmt.Errorf("opening %s store: %w", backend, err)
		}
		if cacheSize <= 0 {
			return s, nil
		}
		strategy, err := lru.New(cacheSize)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("creating LRU strategy: %w", err)
		}
		return cachedstore.New(s, memory.New(strategy, collector)), nil
	}

	if sessionTTL <= 0 {
		s, err := open(ctx)
		if err != nil {
			return nil, err
		}
		return session.Static(s), nil
	}

	return session.Open(ctx, func(ctx context.Context) (store.Store, time.Time, error) {
		s, err := open(ctx)
		if err != nil {
			return nil, time.Time{}, err
		}
		return s, time.Now().Add(sessionTTL), nil
	}, session.WithLogger(log))
}

// Close closes the client and writes the metrics file if requested.
func (c *cliClient) Close() error {
	err := c.Client.Close()
	if c.registry != nil {
		if werr := prometheus.WriteToTextfile(metricsFile, c.registry); werr != nil && err == nil {
			err = fmt.Errorf("writing metrics: %w", werr)
		}
	}
	c.logger.Sync()
	return err
}
