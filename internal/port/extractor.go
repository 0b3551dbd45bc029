package port

// Extractor turns a document file into plain text.
type Extractor interface {
	// Extract reads the file and returns its text content.
	Extract(path string) (string, error)
}
