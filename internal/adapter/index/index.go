// Package index provides exact brute-force cosine similarity indexes:
// an in-memory implementation and a bbolt-persisted one sharing the
// same search semantics.
package index

import (
	"fmt"
	"math"
	"sort"

	"kbrag/internal/domain"
	"kbrag/internal/port"
)

// entry is the stored form of an indexed chunk. Entries keep their
// insertion order, which breaks distance ties deterministically.
type entry struct {
	id       string
	vector   []float32
	text     string
	metadata map[string]string
}

// validateBatch checks every vector of a batch against the index
// dimension before anything is inserted, so a failed batch never
// becomes partially visible. Returns the (possibly latched) dimension.
func validateBatch(dim int, batch []port.Entry) (int, error) {
	for _, e := range batch {
		if isZeroVector(e.Vector) {
			return dim, fmt.Errorf("%w: zero vector has no direction", domain.ErrInvalidArgument)
		}
		if dim == 0 {
			dim = len(e.Vector)
		}
		if len(e.Vector) != dim {
			return dim, fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, dim, len(e.Vector))
		}
	}
	return dim, nil
}

// newEntry copies the caller's vector and metadata; the index owns its
// entries outright and never observes later caller mutation.
func newEntry(id string, e port.Entry) entry {
	vec := make([]float32, len(e.Vector))
	copy(vec, e.Vector)

	var meta map[string]string
	if e.Metadata != nil {
		meta = make(map[string]string, len(e.Metadata))
		for k, v := range e.Metadata {
			meta[k] = v
		}
	}

	return entry{id: id, vector: vec, text: e.Text, metadata: meta}
}

// searchEntries ranks entries passing the filter by ascending cosine
// distance to the query, keeping insertion order for equal distances.
func searchEntries(entries []entry, dim int, query []float32, topK int, filter port.MetadataFilter) ([]port.QueryResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top-k must be positive, got %d", domain.ErrInvalidArgument, topK)
	}
	if isZeroVector(query) {
		return nil, fmt.Errorf("%w: zero query vector has no direction", domain.ErrInvalidArgument)
	}
	if dim != 0 && len(query) != dim {
		return nil, fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, dim, len(query))
	}
	if len(entries) == 0 {
		return nil, nil
	}

	results := make([]port.QueryResult, 0, len(entries))
	for _, e := range entries {
		if filter != nil && !filter(e.metadata) {
			continue
		}
		dist := cosineDistance(query, e.vector)
		results = append(results, port.QueryResult{
			ID:        e.id,
			Text:      e.text,
			Metadata:  e.metadata,
			Distance:  dist,
			Relevance: 1 - dist,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// cosineDistance is 1 - cosine similarity, computed in double precision.
// Both vectors are known to be non-zero by the time this runs.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}

func isZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
