package extractor

import (
	"fmt"
	"os"

	"kbrag/internal/domain"
)

// TextExtractor reads plain-text files (.txt, .md) verbatim.
type TextExtractor struct{}

func (e *TextExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	return string(data), nil
}
