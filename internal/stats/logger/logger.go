// Package logger provides a stats collector that writes transfer metrics
// to a zap logger.
package logger

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arman-k/stegdrive/internal/stats"
)

// Collector implements stats.Collector by logging each update. Counters
// are logged with their running total so a single line tells how many
// chunks or bytes a process has moved so far.
type Collector struct {
	logger *zap.Logger

	mu     sync.Mutex
	totals map[string]int64
}

var _ stats.Collector = (*Collector)(nil)

// New creates a collector logging under logger's "stats" child.
// A nil logger discards everything.
func New(logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		logger: logger.Named("stats"),
		totals: make(map[string]int64),
	}
}

// IncCounter logs a counter increment. Failed transfers are logged at warn
// level, everything else at debug.
func (c *Collector) IncCounter(name string, delta int64) {
	c.mu.Lock()
	c.totals[name] += delta
	total := c.totals[name]
	c.mu.Unlock()

	log := c.logger.Debug
	if stats.Failure(name) {
		log = c.logger.Warn
	}
	log("counter",
		zap.String("metric", name),
		zap.String("help", stats.Help(name)),
		zap.Int64("delta", delta),
		zap.Int64("total", total),
	)
}

// SetGauge logs a gauge value.
func (c *Collector) SetGauge(name string, value int64) {
	c.logger.Debug("gauge",
		zap.String("metric", name),
		zap.String("help", stats.Help(name)),
		zap.Int64("value", value),
	)
}

// ObserveHistogram logs an observation. Durations are logged as
// time.Duration for readability.
func (c *Collector) ObserveHistogram(name string, value float64) {
	field := zap.Float64("value", value)
	if name == stats.MetricDuration {
		field = zap.Duration("value", time.Duration(value*float64(time.Second)))
	}
	c.logger.Debug("histogram",
		zap.String("metric", name),
		zap.String("help", stats.Help(name)),
		field,
	)
}

// Total returns the sum of all increments logged for counter name.
func (c *Collector) Total(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals[name]
}
