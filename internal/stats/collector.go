// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Transfer metrics.
	MetricUploads         = "stegdrive_uploads_total"
	MetricDownloads       = "stegdrive_downloads_total"
	MetricFailures        = "stegdrive_failures_total"
	MetricChunksWritten   = "stegdrive_chunks_written_total"
	MetricChunksRead      = "stegdrive_chunks_read_total"
	MetricSourceBytes     = "stegdrive_source_bytes_total"
	MetricCompressedBytes = "stegdrive_compressed_bytes_total"
	MetricRatio           = "stegdrive_compression_ratio"
	MetricDuration        = "stegdrive_transfer_seconds"

	// Store metrics.
	MetricObjectFetches = "stegdrive_object_fetches_total"

	// Cache metrics.
	MetricCacheHits   = "stegdrive_cache_hits_total"
	MetricCacheMisses = "stegdrive_cache_misses_total"
	MetricCacheSize   = "stegdrive_cache_size"
)

// Help returns a description of a metric, or the name itself for unknown
// metrics.
func Help(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}

var help = map[string]string{
	MetricUploads:         "Chunk sets uploaded.",
	MetricDownloads:       "Chunk sets downloaded.",
	MetricFailures:        "Uploads and downloads that failed.",
	MetricChunksWritten:   "Chunks persisted to the store.",
	MetricChunksRead:      "Chunks read from the store.",
	MetricSourceBytes:     "Uncompressed bytes transformed.",
	MetricCompressedBytes: "Compressed bytes carried by records.",
	MetricRatio:           "Compressed size divided by source size per upload.",
	MetricDuration:        "Wall time of an upload or download.",
	MetricObjectFetches:   "Objects fetched from the underlying store.",
	MetricCacheHits:       "Object fetches served from the cache.",
	MetricCacheMisses:     "Object fetches not found in the cache.",
	MetricCacheSize:       "Objects held by the cache.",
}

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}

// Discard is a Collector that drops every metric. It is the default when
// no collector is configured.
var Discard Collector = discard{}

type discard struct{}

func (discard) IncCounter(string, int64)         {}
func (discard) SetGauge(string, int64)           {}
func (discard) ObserveHistogram(string, float64) {}

// Failure reports whether a counter counts failed transfers.
func Failure(name string) bool {
	return name == MetricFailures
}
