// Package extractor turns document containers into plain text.
// Supported formats: .txt, .md, .pdf, .docx, .pptx.
package extractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"kbrag/internal/domain"
	"kbrag/internal/port"
)

// Registry dispatches extraction by file extension.
type Registry struct {
	extractors map[string]port.Extractor
}

// NewRegistry creates a registry with all built-in extractors.
func NewRegistry() *Registry {
	text := &TextExtractor{}
	return &Registry{
		extractors: map[string]port.Extractor{
			".txt":  text,
			".md":   text,
			".pdf":  &PDFExtractor{},
			".docx": &DocxExtractor{},
			".pptx": &PptxExtractor{},
		},
	}
}

// Supported reports whether files with the given name can be extracted.
func (r *Registry) Supported(name string) bool {
	_, ok := r.extractors[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Extensions returns the supported extensions, for display.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.extractors))
	for ext := range r.extractors {
		exts = append(exts, ext)
	}
	return exts
}

// Extract reads the file and returns its text content. Unknown
// extensions fail with domain.ErrUnsupportedFormat.
func (r *Registry) Extract(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	e, ok := r.extractors[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}
	return e.Extract(path)
}
