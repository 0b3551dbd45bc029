package embedding

import (
	"context"
	"crypto/sha256"
	"math"
)

// MockEmbedder produces deterministic unit vectors derived from a hash
// of the input text. Useful for tests and offline runs; texts sharing a
// prefix do not embed near each other, so it exercises plumbing, not
// retrieval quality.
type MockEmbedder struct {
	dimension int
}

// NewMockEmbedder creates a mock embedder with the given dimension.
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

// Embed generates a deterministic embedding for the text.
func (e *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dimension)
	sum := sha256.Sum256([]byte(text))

	var norm float64
	for i := range vec {
		// Stretch the 32 hash bytes over the whole vector.
		b := sum[(i*7)%len(sum)]
		vec[i] = float32(b)/255.0 + 0.001
		norm += float64(vec[i]) * float64(vec[i])
	}

	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

// EmbedBatch generates deterministic embeddings for the texts.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Dimension returns the embedding vector dimension.
func (e *MockEmbedder) Dimension() int { return e.dimension }

// ModelName returns the name of the embedding model.
func (e *MockEmbedder) ModelName() string { return "mock" }
