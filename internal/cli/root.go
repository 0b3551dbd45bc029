package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kbrag/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "kbrag",
	Short: "Knowledge-base question answering over your documents",
	Long: `kbrag indexes document collections (txt, md, pdf, docx, pptx) into a
similarity index and answers natural-language questions grounded in the
retrieved passages, with source citations and a confidence estimate.

Example usage:
  kbrag ingest ./docs              # Index a directory of documents
  kbrag ask -q "What is covered?"  # Ask a question
  kbrag serve                      # Start the HTTP API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./kbrag.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "working directory (default is current directory)")
}
