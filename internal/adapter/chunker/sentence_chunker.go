package chunker

import (
	"fmt"
	"strings"

	"kbrag/internal/domain"
)

// boundaryMarkers are tried in order; the first one whose rightmost
// occurrence leaves the chunk at least half the target size wins.
var boundaryMarkers = []string{". ", ".\n", "! ", "?\n"}

// SentenceChunker splits document text into overlapping chunks,
// preferring to end each chunk at a sentence boundary.
type SentenceChunker struct {
	size    int
	overlap int
}

// NewSentenceChunker creates a chunker producing chunks of at most size
// bytes with the given overlap between consecutive chunks.
func NewSentenceChunker(size, overlap int) (*SentenceChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfiguration, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d", domain.ErrInvalidConfiguration, size, overlap)
	}
	return &SentenceChunker{size: size, overlap: overlap}, nil
}

// Chunk splits text into ordered, overlapping chunks. Leading and
// trailing whitespace is stripped first; empty input yields no chunks.
// The same text and configuration always produce the same sequence.
func (c *SentenceChunker) Chunk(text string) []domain.Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []domain.Chunk
	start := 0
	seq := 0

	for start < len(text) {
		end := start + c.size
		if end > len(text) {
			end = len(text)
		}

		if end < len(text) {
			end = c.adjustToBoundary(text, start, end)
		}

		if chunkText := strings.TrimSpace(text[start:end]); chunkText != "" {
			chunks = append(chunks, domain.Chunk{
				Text:          chunkText,
				SequenceIndex: seq,
				StartOffset:   start,
				EndOffset:     end,
			})
			seq++
		}

		next := end - c.overlap
		// The cursor must strictly advance or chunking would never
		// terminate; boundary adjustment can pull end back far enough
		// for the overlap to swallow the whole step.
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// adjustToBoundary pulls end back to just past a sentence boundary,
// unless that would shrink the chunk below half the target size.
func (c *SentenceChunker) adjustToBoundary(text string, start, end int) int {
	for _, marker := range boundaryMarkers {
		idx := strings.LastIndex(text[start:end], marker)
		if idx > c.size/2 {
			return start + idx + 1
		}
	}
	return end
}

// Size returns the configured chunk size.
func (c *SentenceChunker) Size() int { return c.size }

// Overlap returns the configured overlap.
func (c *SentenceChunker) Overlap() int { return c.overlap }
