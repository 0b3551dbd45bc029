package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"kbrag/internal/adapter/embedding"
	"kbrag/internal/adapter/generation"
	"kbrag/internal/usecase"
)

var (
	askQuestion  string
	askTopK      int
	askJSON      bool
	askNoSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question over the indexed documents",
	Long: `Retrieve the most relevant chunks for a question and generate a
grounded answer with source citations and a confidence estimate.

Examples:
  kbrag ask -q "What does the contract say about termination?"
  kbrag ask -q "Summarize the findings" --top-k 10 --json`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to answer (required)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (default from config)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	askCmd.Flags().BoolVar(&askNoSources, "no-sources", false, "omit sources and confidence")
	askCmd.MarkFlagRequired("question")
}

func runAsk(cmd *cobra.Command, args []string) error {
	idx, closeIndex, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer closeIndex()

	if idx.Count() == 0 {
		return fmt.Errorf("no documents indexed. Run 'kbrag ingest' first")
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return err
	}
	generator, err := generation.New(cfg.Generation)
	if err != nil {
		return err
	}

	engine := usecase.NewEngine(idx, embedder, generator)

	topK := cfg.Retrieve.TopK
	if askTopK > 0 {
		topK = askTopK
	}

	record, err := engine.Answer(cmd.Context(), askQuestion, topK, !askNoSources)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if askJSON {
		output, _ := json.MarshalIndent(record, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Println(record.Answer)
	if len(record.Sources) > 0 {
		fmt.Printf("\nSources (confidence: %s):\n", record.Confidence)
		for _, s := range record.Sources {
			fmt.Printf("  %s (%s, relevance %.3f)\n", s.Filename, s.FileType, s.RelevanceScore)
		}
	}

	return nil
}
