package domain

import "errors"

// Error taxonomy. Callers classify failures with errors.Is; adapters
// wrap these with context via fmt.Errorf and %w.
var (
	// ErrInvalidConfiguration marks bad construction parameters.
	// Fatal at construction time, never retried.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrDimensionMismatch marks a vector whose length differs from the
	// index's fixed dimension. Index state is unchanged by the failed call.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidArgument marks a caller error on a single call, such as
	// a non-positive top-k or a zero query vector.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEmbeddingUnavailable marks an embedding provider failure.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrGenerationUnavailable marks a generation provider failure.
	ErrGenerationUnavailable = errors.New("generation provider unavailable")

	// ErrUnsupportedFormat marks a document container no extractor handles.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrExtractionFailed marks a document that could not be parsed.
	ErrExtractionFailed = errors.New("document extraction failed")
)
