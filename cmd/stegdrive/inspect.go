package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arman-k/stegdrive/internal/pipeline"
	"github.com/arman-k/stegdrive/internal/store/memstore"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <dir>",
	Short: "Decode a chunk set from a local directory",
	Long: `Decode the documents in a local directory, such as a folder copied out
of the store by hand, and report what they contain.

Without --out the documents are only verified. Directories without a
manifest are decoded with the --codec and --encoding flags.

Examples:
  # Verify a folder of documents
  stegdrive inspect ./export/photo.jpg

  # Restore it
  stegdrive inspect ./export/photo.jpg --out ./photo.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var inspectOut string

func init() {
	inspectCmd.Flags().StringVarP(&inspectOut, "out", "o", "", "write the decoded file here")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	// Inspecting never touches the remote store.
	client, err := newClient(ctx, memstore.New())
	if err != nil {
		return err
	}
	defer client.Close()

	var w io.Writer = io.Discard
	if inspectOut != "" {
		f, err := os.Create(inspectOut)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}

	m, err := client.DecodeDir(ctx, args[0], w)
	if err != nil {
		if inspectOut != "" {
			os.Remove(inspectOut)
		}
		return fmt.Errorf("decoding %s: %w", args[0], err)
	}

	fmt.Printf("Source:     %s\n", m.Source)
	fmt.Printf("Size:       %s\n", pipeline.FormatBytes(m.Size))
	fmt.Printf("Compressed: %s\n", pipeline.FormatBytes(m.CompressedSize))
	fmt.Printf("Documents:  %d\n", m.Chunks)
	fmt.Printf("Records:    %d\n", m.Records)
	fmt.Printf("Codec:      %s\n", m.Codec)
	fmt.Printf("Encoding:   %s\n", m.Encoding)
	return nil
}
