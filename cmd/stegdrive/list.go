package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/arman-k/stegdrive"
	"github.com/arman-k/stegdrive/internal/pipeline"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored chunk sets",
	Long: `List the chunk sets in the store.

With --long, the manifest of each chunk set is read and its size,
document count, codec and upload time are shown. Chunk sets stored
without a manifest show dashes.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var longList bool

func init() {
	listCmd.Flags().BoolVarP(&longList, "long", "l", false, "show manifest details")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := newClient(ctx, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	names, err := client.List(ctx)
	if err != nil {
		return fmt.Errorf("listing: %w", err)
	}
	if len(names) == 0 {
		fmt.Println("No chunk sets stored.")
		return nil
	}

	if !longList {
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tDOCUMENTS\tCODEC\tENCODING\tUPLOADED")
	for _, name := range names {
		m, err := client.Stat(ctx, name)
		if errors.Is(err, stegdrive.ErrNotFound) {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\n", name)
			continue
		}
		if err != nil {
			return fmt.Errorf("reading manifest of %s: %w", name, err)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			name, pipeline.FormatBytes(m.Size), m.Chunks, m.Codec, m.Encoding,
			m.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
