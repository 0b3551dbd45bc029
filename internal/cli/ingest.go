package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [path]",
	Short: "Index documents for question answering",
	Long: `Index every supported document under the given directory.
Supported formats: .txt, .md, .pdf, .docx, .pptx.

Examples:
  kbrag ingest .              # Index current directory
  kbrag ingest /path/to/docs  # Index a specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := rootDir
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	idx, closeIndex, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer closeIndex()

	ingest, err := newIngestUseCase(cfg, idx)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	result, err := ingest.IngestDir(cmd.Context(), path, func(done, total int) {
		if bar == nil {
			bar = progressbar.Default(int64(total), "ingesting")
		}
		bar.Set(done)
	})
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nProcessed %d files (%d chunks indexed), skipped %d\n",
		result.FilesProcessed, result.ChunksIndexed, result.FilesSkipped)
	if len(result.Errors) > 0 {
		fmt.Printf("%d files failed:\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", e)
		}
	}

	return nil
}
