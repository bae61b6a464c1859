package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arman-k/stegdrive/internal/fetch"
	"github.com/arman-k/stegdrive/internal/pipeline"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Store local files as chunk sets",
	Long: `Compress and encode each file, split it into text documents and push
them to the store under a folder named after the file.

Sources may also be http(s) URLs; they are streamed straight into the
encoder and named after the last element of the URL path.

An upload that fails part way removes the documents it already pushed.

Examples:
  # Store a file under its base name
  stegdrive upload ./photo.jpg

  # Store under another name
  stegdrive upload ./photo.jpg --name holiday.jpg

  # Store a file straight from the web
  stegdrive upload https://example.com/papers/report.pdf

  # Use zstd and ascii85 for denser documents
  stegdrive --codec zstd --encoding ascii85 upload ./backup.tar`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

var uploadName string

func init() {
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "chunk set name (single file only; default: file base name)")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if uploadName != "" && len(args) > 1 {
		return fmt.Errorf("--name requires exactly one file")
	}

	ctx, cancel := signalContext()
	defer cancel()

	client, err := newClient(ctx, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	fetcher := fetch.New()
	for _, path := range args {
		if fetch.IsURL(path) {
			name := uploadName
			if name == "" {
				if name, err = fetch.Name(path); err != nil {
					return err
				}
			}
			body, _, err := fetcher.Open(ctx, path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			m, err := client.UploadReader(ctx, name, body)
			body.Close()
			if err != nil {
				return fmt.Errorf("uploading %s: %w", path, err)
			}
			printSummary(m.Source, m.Size, m.CompressedSize, m.Chunks)
			continue
		}

		if uploadName == "" {
			m, err := client.Upload(ctx, path)
			if err != nil {
				return fmt.Errorf("uploading %s: %w", path, err)
			}
			printSummary(m.Source, m.Size, m.CompressedSize, m.Chunks)
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		m, err := client.UploadReader(ctx, uploadName, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("uploading %s: %w", path, err)
		}
		printSummary(m.Source, m.Size, m.CompressedSize, m.Chunks)
	}
	return nil
}

func printSummary(name string, size, compressed int64, chunks int) {
	if quiet {
		return
	}
	ratio := 0.0
	if size > 0 {
		ratio = float64(compressed) / float64(size)
	}
	fmt.Printf("  Name:       %s\n", name)
	fmt.Printf("  Size:       %s\n", pipeline.FormatBytes(size))
	fmt.Printf("  Compressed: %s (%.2f)\n", pipeline.FormatBytes(compressed), ratio)
	fmt.Printf("  Documents:  %d\n", chunks)
}
