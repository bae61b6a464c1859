package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <name>...",
	Aliases: []string{"rm"},
	Short:   "Delete stored chunk sets",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := newClient(ctx, nil)
	if err != nil {
		return err
	}
	defer client.Close()

	for _, name := range args {
		if err := client.Delete(ctx, name); err != nil {
			return fmt.Errorf("deleting %s: %w", name, err)
		}
		if !quiet {
			fmt.Printf("Deleted %s\n", name)
		}
	}
	return nil
}
