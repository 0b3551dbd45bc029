package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"kbrag/internal/domain"
	"kbrag/internal/port"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	embeds int
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	f.embeds++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v, err := f.Embed(ctx, texts[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int    { return len(f.vector) }
func (f *fakeEmbedder) ModelName() string { return "fake" }

type fakeGenerator struct {
	answer     string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeGenerator) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeGenerator) ModelName() string { return "fake" }

// stubIndex returns canned results so tests control relevance exactly.
type stubIndex struct {
	results []port.QueryResult
}

func (s *stubIndex) InsertBatch([]port.Entry) (int, error) { return 0, nil }
func (s *stubIndex) Clear() (int, error)                   { return 0, nil }
func (s *stubIndex) Count() int                            { return len(s.results) }
func (s *stubIndex) Dimension() int                        { return 2 }

func (s *stubIndex) Search([]float32, int, port.MetadataFilter) ([]port.QueryResult, error) {
	return s.results, nil
}

func hit(filename string, relevance float64) port.QueryResult {
	return port.QueryResult{
		ID:        filename + fmt.Sprintf("-%f", relevance),
		Text:      "chunk from " + filename,
		Distance:  1 - relevance,
		Relevance: relevance,
		Metadata: map[string]string{
			domain.MetaFilename: filename,
			domain.MetaFileType: ".txt",
		},
	}
}

func newTestEngine(idx port.SimilarityIndex, gen *fakeGenerator) *Engine {
	return NewEngine(idx, &fakeEmbedder{vector: []float32{1, 0}}, gen)
}

func TestAnswerSourceDeduplication(t *testing.T) {
	idx := &stubIndex{results: []port.QueryResult{
		hit("a.txt", 0.9),
		hit("b.txt", 0.8),
		hit("a.txt", 0.95),
	}}
	gen := &fakeGenerator{answer: "ok"}

	record, err := newTestEngine(idx, gen).Answer(context.Background(), "q", 3, true)
	if err != nil {
		t.Fatal(err)
	}

	if len(record.Sources) != 2 {
		t.Fatalf("expected 2 deduplicated sources, got %d", len(record.Sources))
	}
	// First occurrence wins even though the later a.txt chunk scores higher.
	if record.Sources[0].Filename != "a.txt" || record.Sources[0].RelevanceScore != 0.9 {
		t.Errorf("expected first source {a.txt 0.9}, got %+v", record.Sources[0])
	}
	if record.Sources[1].Filename != "b.txt" || record.Sources[1].RelevanceScore != 0.8 {
		t.Errorf("expected second source {b.txt 0.8}, got %+v", record.Sources[1])
	}
	if record.RetrievedChunks != 3 {
		t.Errorf("expected 3 retrieved chunks, got %d", record.RetrievedChunks)
	}
}

func TestAnswerConfidenceThresholds(t *testing.T) {
	cases := []struct {
		name       string
		relevances []float64
		want       string
	}{
		{"high", []float64{0.9, 0.8}, domain.ConfidenceHigh},
		{"medium", []float64{0.6, 0.55}, domain.ConfidenceMedium},
		{"low", []float64{0.4, 0.3}, domain.ConfidenceLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var results []port.QueryResult
			for i, r := range tc.relevances {
				results = append(results, hit(fmt.Sprintf("f%d.txt", i), r))
			}
			gen := &fakeGenerator{answer: "ok"}

			record, err := newTestEngine(&stubIndex{results: results}, gen).
				Answer(context.Background(), "q", len(results), true)
			if err != nil {
				t.Fatal(err)
			}
			if record.Confidence != tc.want {
				t.Errorf("expected confidence %q, got %q", tc.want, record.Confidence)
			}
		})
	}
}

func TestAnswerEmptyRetrieval(t *testing.T) {
	gen := &fakeGenerator{answer: "should not be called"}

	record, err := newTestEngine(&stubIndex{}, gen).Answer(context.Background(), "q", 5, true)
	if err != nil {
		t.Fatal(err)
	}

	if record.Answer != noInformationAnswer {
		t.Errorf("expected fallback answer, got %q", record.Answer)
	}
	if record.RetrievedChunks != 0 {
		t.Errorf("expected 0 retrieved chunks, got %d", record.RetrievedChunks)
	}
	if record.Confidence != domain.ConfidenceLow {
		t.Errorf("expected low confidence, got %q", record.Confidence)
	}
	if len(record.Sources) != 0 {
		t.Errorf("expected no sources, got %d", len(record.Sources))
	}
	if gen.calls != 0 {
		t.Errorf("generation must be skipped on empty retrieval, got %d calls", gen.calls)
	}
}

func TestAnswerGenerationFailureRecovered(t *testing.T) {
	idx := &stubIndex{results: []port.QueryResult{hit("a.txt", 0.9)}}
	gen := &fakeGenerator{err: fmt.Errorf("%w: connection refused", domain.ErrGenerationUnavailable)}

	record, err := newTestEngine(idx, gen).Answer(context.Background(), "q", 1, true)
	if err != nil {
		t.Fatalf("generation failure must not propagate, got %v", err)
	}

	if !strings.HasPrefix(record.Answer, "Error generating answer:") {
		t.Errorf("expected error-describing answer, got %q", record.Answer)
	}
	// Retrieval results survive the failed generation.
	if record.RetrievedChunks != 1 || len(record.Sources) != 1 {
		t.Errorf("expected retrieval results to be kept, got chunks=%d sources=%d",
			record.RetrievedChunks, len(record.Sources))
	}
}

func TestAnswerEmbeddingFailureFatal(t *testing.T) {
	engine := NewEngine(
		&stubIndex{results: []port.QueryResult{hit("a.txt", 0.9)}},
		&fakeEmbedder{err: fmt.Errorf("%w: model not loaded", domain.ErrEmbeddingUnavailable)},
		&fakeGenerator{answer: "ok"},
	)

	_, err := engine.Answer(context.Background(), "q", 1, true)
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Errorf("expected ErrEmbeddingUnavailable to propagate, got %v", err)
	}
}

func TestAnswerWithoutSources(t *testing.T) {
	idx := &stubIndex{results: []port.QueryResult{hit("a.txt", 0.9)}}
	gen := &fakeGenerator{answer: "ok"}

	record, err := newTestEngine(idx, gen).Answer(context.Background(), "q", 1, false)
	if err != nil {
		t.Fatal(err)
	}

	if record.Sources != nil {
		t.Errorf("expected no sources when not requested, got %v", record.Sources)
	}
	if record.Confidence != "" {
		t.Errorf("expected no confidence when not requested, got %q", record.Confidence)
	}
	if record.Answer != "ok" || record.RetrievedChunks != 1 {
		t.Errorf("answer and chunk count must still be populated: %+v", record)
	}
}

func TestAnswerContextFormat(t *testing.T) {
	idx := &stubIndex{results: []port.QueryResult{
		hit("a.txt", 0.9),
		hit("b.txt", 0.8),
	}}
	gen := &fakeGenerator{answer: "ok"}

	_, err := newTestEngine(idx, gen).Answer(context.Background(), "what is this?", 2, true)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(gen.lastUser, "[Document 1: a.txt]\nchunk from a.txt") {
		t.Errorf("missing labeled block for first document in prompt:\n%s", gen.lastUser)
	}
	if !strings.Contains(gen.lastUser, "[Document 2: b.txt]") {
		t.Errorf("missing labeled block for second document in prompt:\n%s", gen.lastUser)
	}
	if !strings.Contains(gen.lastUser, "Question: what is this?") {
		t.Errorf("missing question in prompt:\n%s", gen.lastUser)
	}
	if !strings.Contains(gen.lastSystem, "ONLY the information from the provided documents") {
		t.Errorf("unexpected system prompt:\n%s", gen.lastSystem)
	}
}

func TestAnswerBatch(t *testing.T) {
	idx := &stubIndex{results: []port.QueryResult{hit("a.txt", 0.9)}}
	gen := &fakeGenerator{answer: "ok"}

	records, err := newTestEngine(idx, gen).AnswerBatch(context.Background(), []string{"q1", "q2", "q3"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, r := range records {
		if r.Question != fmt.Sprintf("q%d", i+1) {
			t.Errorf("record %d echoes wrong question: %q", i, r.Question)
		}
	}
	if gen.calls != 3 {
		t.Errorf("expected 3 generation calls, got %d", gen.calls)
	}
}
