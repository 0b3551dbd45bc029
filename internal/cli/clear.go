package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all indexed chunks",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	idx, closeIndex, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer closeIndex()

	removed, err := idx.Clear()
	if err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	fmt.Printf("Removed %d chunks\n", removed)
	return nil
}
