package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"kbrag/internal/domain"
	"kbrag/internal/port"
)

// noInformationAnswer is returned verbatim when retrieval finds nothing;
// no generation call is made in that case.
const noInformationAnswer = "I couldn't find any relevant information in the knowledge base to answer your question."

const systemPrompt = `You are a helpful AI assistant that answers questions based on the provided context from documents.

Instructions:
- Answer the question using ONLY the information from the provided documents
- If the answer cannot be found in the documents, say so clearly
- Be concise but comprehensive
- Cite specific documents when making claims
- If information is unclear or contradictory, mention it
- Use a professional and informative tone`

// Confidence thresholds on the mean relevance of all retrieved chunks.
const (
	confidenceHighThreshold   = 0.7
	confidenceMediumThreshold = 0.5
)

// Engine answers questions over the indexed knowledge base: it embeds
// the question, retrieves the nearest chunks, and grounds a generation
// call on them.
type Engine struct {
	index     port.SimilarityIndex
	embedder  port.Embedder
	generator port.Generator
}

// NewEngine creates an answer engine over the given collaborators.
func NewEngine(index port.SimilarityIndex, embedder port.Embedder, generator port.Generator) *Engine {
	return &Engine{index: index, embedder: embedder, generator: generator}
}

// Answer responds to a question using the topK most relevant chunks.
// An embedding failure is fatal to the call; a generation failure is
// converted into an error-describing answer string with the retrieval
// results still attached.
func (e *Engine) Answer(ctx context.Context, question string, topK int, includeSources bool) (domain.AnswerRecord, error) {
	vec, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return domain.AnswerRecord{}, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := e.index.Search(vec, topK, nil)
	if err != nil {
		return domain.AnswerRecord{}, fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		record := domain.AnswerRecord{
			Answer:   noInformationAnswer,
			Question: question,
		}
		if includeSources {
			record.Sources = []domain.Source{}
			record.Confidence = domain.ConfidenceLow
		}
		return record, nil
	}

	answer, err := e.generator.Generate(ctx, systemPrompt, userPrompt(buildContext(results), question))
	if err != nil {
		// Retrieval work is not wasted on a generation failure.
		answer = fmt.Sprintf("Error generating answer: %v", err)
	}

	record := domain.AnswerRecord{
		Answer:          answer,
		Question:        question,
		RetrievedChunks: len(results),
	}
	if includeSources {
		record.Sources = dedupeSources(results)
		record.Confidence = confidence(results)
	}
	return record, nil
}

// AnswerBatch answers questions sequentially with shared settings.
func (e *Engine) AnswerBatch(ctx context.Context, questions []string, topK int) ([]domain.AnswerRecord, error) {
	records := make([]domain.AnswerRecord, 0, len(questions))
	for _, q := range questions {
		record, err := e.Answer(ctx, q, topK, true)
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
	return records, nil
}

// buildContext labels each retrieved chunk with its rank and filename.
func buildContext(results []port.QueryResult) string {
	parts := make([]string, 0, len(results))
	for i, r := range results {
		filename := r.Metadata[domain.MetaFilename]
		if filename == "" {
			filename = "Unknown"
		}
		parts = append(parts, fmt.Sprintf("[Document %d: %s]\n%s\n", i+1, filename, r.Text))
	}
	return strings.Join(parts, "\n")
}

func userPrompt(context, question string) string {
	return fmt.Sprintf(`Context from documents:

%s

Question: %s

Please provide a clear and accurate answer based on the above context.`, context, question)
}

// dedupeSources keeps the first occurrence per distinct filename.
// Results arrive ranked, so first-seen is the most relevant chunk of
// that file; a later, higher-scoring duplicate is dropped by design.
func dedupeSources(results []port.QueryResult) []domain.Source {
	sources := make([]domain.Source, 0, len(results))
	seen := make(map[string]bool)

	for _, r := range results {
		filename := r.Metadata[domain.MetaFilename]
		if filename == "" {
			filename = "Unknown"
		}
		if seen[filename] {
			continue
		}
		seen[filename] = true

		fileType := r.Metadata[domain.MetaFileType]
		if fileType == "" {
			fileType = "Unknown"
		}
		sources = append(sources, domain.Source{
			Filename:       filename,
			FileType:       fileType,
			RelevanceScore: roundScore(r.Relevance),
		})
	}
	return sources
}

// confidence averages relevance over all retrieved chunks, not just the
// deduplicated sources.
func confidence(results []port.QueryResult) string {
	var sum float64
	for _, r := range results {
		sum += r.Relevance
	}
	avg := sum / float64(len(results))

	switch {
	case avg > confidenceHighThreshold:
		return domain.ConfidenceHigh
	case avg > confidenceMediumThreshold:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

func roundScore(score float64) float64 {
	return math.Round(score*1000) / 1000
}
