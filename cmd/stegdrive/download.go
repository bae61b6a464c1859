package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var downloadCmd = &cobra.Command{
	Use:   "download <name>...",
	Short: "Restore chunk sets to local files",
	Long: `Fetch the documents of each chunk set, put them back in order and
decode them into a file named after the chunk set.

The output is written to a temporary file and renamed into place once it
is complete, so an interrupted download never leaves a partial file.

Examples:
  # Restore into the current directory
  stegdrive download photo.jpg

  # Restore several chunk sets into a directory
  stegdrive download photo.jpg backup.tar --out ./restored`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDownload,
}

var outDir string

func init() {
	downloadCmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to restore files into")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	client, err := newClient(ctx, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	for _, name := range args {
		path, err := client.Download(ctx, name, outDir)
		if err != nil {
			return fmt.Errorf("downloading %s: %w", name, err)
		}
		if !quiet {
			fmt.Printf("  Restored:   %s\n", path)
		}
	}
	return nil
}
