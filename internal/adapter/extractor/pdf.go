package extractor

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"kbrag/internal/domain"
)

// PDFExtractor pulls the plain-text layer out of PDF files.
type PDFExtractor struct{}

func (e *PDFExtractor) Extract(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	defer f.Close()

	body, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	return buf.String(), nil
}
