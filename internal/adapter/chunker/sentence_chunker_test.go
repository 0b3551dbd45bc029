package chunker

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"kbrag/internal/domain"
)

func TestNewSentenceChunkerValidation(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{"valid", 100, 20, false},
		{"zero overlap", 100, 0, false},
		{"zero size", 0, 0, true},
		{"negative size", -1, 0, true},
		{"negative overlap", 100, -1, true},
		{"overlap equals size", 100, 100, true},
		{"overlap exceeds size", 100, 150, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSentenceChunker(tc.size, tc.overlap)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidConfiguration) {
					t.Errorf("expected ErrInvalidConfiguration, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestChunkEmptyInput(t *testing.T) {
	c, err := NewSentenceChunker(100, 20)
	if err != nil {
		t.Fatal(err)
	}

	if chunks := c.Chunk(""); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(chunks))
	}
	if chunks := c.Chunk("   \n\t  "); len(chunks) != 0 {
		t.Errorf("expected no chunks for whitespace input, got %d", len(chunks))
	}
}

func TestChunkShortInput(t *testing.T) {
	c, err := NewSentenceChunker(100, 20)
	if err != nil {
		t.Fatal(err)
	}

	text := "A short document."
	chunks := c.Chunk(text)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("expected chunk text %q, got %q", text, chunks[0].Text)
	}
	if chunks[0].StartOffset != 0 || chunks[0].EndOffset != len(text) {
		t.Errorf("expected offsets [0,%d), got [%d,%d)", len(text), chunks[0].StartOffset, chunks[0].EndOffset)
	}
}

func TestChunkSentenceBoundary(t *testing.T) {
	c, err := NewSentenceChunker(40, 0)
	if err != nil {
		t.Fatal(err)
	}

	// The first sentence ends within (size/2, size), so the first chunk
	// should stop at the period rather than splitting the second sentence.
	text := "First sentence here padded out. Second sentence follows immediately after it."
	chunks := c.Chunk(text)
	if len(chunks) < 2 {
		t.Fatalf("expected at least 2 chunks, got %d", len(chunks))
	}
	if !strings.HasSuffix(chunks[0].Text, ".") {
		t.Errorf("expected first chunk to end at sentence boundary, got %q", chunks[0].Text)
	}
	if strings.Contains(chunks[0].Text, "Second") {
		t.Errorf("first chunk should not bleed into the second sentence: %q", chunks[0].Text)
	}
}

func TestChunkBoundaryNotTakenWhenTooEarly(t *testing.T) {
	c, err := NewSentenceChunker(40, 0)
	if err != nil {
		t.Fatal(err)
	}

	// The only boundary falls inside the first half of the window, so
	// the chunker keeps the full-size window instead of a tiny chunk.
	text := "Short. " + strings.Repeat("x", 100)
	chunks := c.Chunk(text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if chunks[0].EndOffset-chunks[0].StartOffset != 40 {
		t.Errorf("expected full-size first window, got [%d,%d)", chunks[0].StartOffset, chunks[0].EndOffset)
	}
}

func TestChunkDeterminism(t *testing.T) {
	c, err := NewSentenceChunker(50, 10)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20)
	first := c.Chunk(text)
	second := c.Chunk(text)

	if !reflect.DeepEqual(first, second) {
		t.Error("chunking the same input twice produced different sequences")
	}
}

func TestChunkCoverage(t *testing.T) {
	c, err := NewSentenceChunker(80, 15)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.TrimSpace(strings.Repeat("Coverage must hold for every byte of input. ", 30))
	chunks := c.Chunk(text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}

	if chunks[0].StartOffset != 0 {
		t.Errorf("first chunk should start at 0, got %d", chunks[0].StartOffset)
	}
	if last := chunks[len(chunks)-1]; last.EndOffset != len(text) {
		t.Errorf("last chunk should end at %d, got %d", len(text), last.EndOffset)
	}

	for i, ch := range chunks {
		if ch.Text == "" {
			t.Errorf("chunk %d has empty trimmed text", i)
		}
		if ch.StartOffset < 0 || ch.EndOffset > len(text) || ch.StartOffset >= ch.EndOffset {
			t.Errorf("chunk %d has invalid offsets [%d,%d)", i, ch.StartOffset, ch.EndOffset)
		}
		if ch.SequenceIndex != i {
			t.Errorf("chunk %d has sequence index %d", i, ch.SequenceIndex)
		}
		if i > 0 {
			prev := chunks[i-1]
			if ch.StartOffset < prev.StartOffset {
				t.Errorf("chunk %d starts before chunk %d", i, i-1)
			}
			if ch.StartOffset > prev.EndOffset {
				t.Errorf("gap between chunk %d (ends %d) and chunk %d (starts %d)",
					i-1, prev.EndOffset, i, ch.StartOffset)
			}
		}
	}
}

func TestChunkTerminationHighOverlap(t *testing.T) {
	// overlap = size-1 is the worst case for cursor advancement; the
	// strict-progress guard must still terminate the loop.
	c, err := NewSentenceChunker(10, 9)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("abcde. ", 40)
	chunks := c.Chunk(text)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
}

func TestChunkEndToEndScenario(t *testing.T) {
	c, err := NewSentenceChunker(100, 20)
	if err != nil {
		t.Fatal(err)
	}

	text := strings.Repeat("This is a test document. ", 50)
	chunks := c.Chunk(text)
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}

	for i, ch := range chunks {
		if ch.EndOffset-ch.StartOffset > 100 {
			t.Errorf("chunk %d window wider than chunk size: [%d,%d)", i, ch.StartOffset, ch.EndOffset)
		}
		if i > 0 {
			overlap := chunks[i-1].EndOffset - ch.StartOffset
			if overlap < 0 || overlap > 20 {
				t.Errorf("chunk %d overlaps its predecessor by %d bytes, want [0,20]", i, overlap)
			}
		}
	}
}
