package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	idx, closeIndex, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer closeIndex()

	fmt.Printf("Indexed chunks:   %d\n", idx.Count())
	if dim := idx.Dimension(); dim > 0 {
		fmt.Printf("Vector dimension: %d\n", dim)
	}
	fmt.Printf("Embedding model:  %s (%s)\n", cfg.Embedding.Model, cfg.Embedding.Provider)
	fmt.Printf("Generation model: %s (%s)\n", cfg.Generation.Model, cfg.Generation.Provider)

	return nil
}
