package main

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	// Global flags.
	backend      string
	dataDir      string
	bucketURL    string
	endpoint     string
	region       string
	codecName    string
	encodingName string
	threshold    int
	stagingDir   string
	cacheSize    int
	sessionTTL   time.Duration
	metricsFile  string
	quiet        bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "stegdrive",
	Short: "Store files in an object store as plain text documents",
	Long: `Stegdrive stores arbitrary files in a remote object store as a set of
ordinary-looking text documents, and restores them byte for byte.

A file is compressed, encoded as lines of text and split into documents
of bounded size. The documents of one file are stored in a folder named
after it, together with a manifest.

Examples:
  # Store a file in a local data directory
  stegdrive upload ./photo.jpg

  # Store a file in S3
  stegdrive --backend s3 --bucket s3://my-bucket/stegdrive upload ./photo.jpg

  # Restore it
  stegdrive download photo.jpg --out ./restored

  # Show what is stored
  stegdrive list --long`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "disk", "object store: disk, s3, gcs")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "./data", "directory holding chunk sets (disk backend)")
	rootCmd.PersistentFlags().StringVar(&bucketURL, "bucket", "", "bucket URL: s3://bucket/prefix or gs://bucket/prefix")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "custom endpoint for S3-compatible services or the GCS emulator")
	rootCmd.PersistentFlags().StringVar(&region, "region", "", "AWS region (s3 backend)")
	rootCmd.PersistentFlags().StringVar(&codecName, "codec", "zlib", "compression codec for uploads")
	rootCmd.PersistentFlags().StringVar(&encodingName, "encoding", "base64", "text encoding for uploads: base64, ascii85")
	rootCmd.PersistentFlags().IntVar(&threshold, "threshold", 0, "payload bytes per document (0 = default)")
	rootCmd.PersistentFlags().StringVar(&stagingDir, "staging", "", "directory for scratch files (default: system temp)")
	rootCmd.PersistentFlags().IntVar(&cacheSize, "cache", 0, "number of fetched objects to keep in memory (0 = no cache)")
	rootCmd.PersistentFlags().DurationVar(&sessionTTL, "session-ttl", 0, "reconnect to the store after this long (0 = never)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}
