package port

// Entry is a unit offered to the similarity index for insertion.
type Entry struct {
	Vector   []float32
	Text     string
	Metadata map[string]string
}

// QueryResult is one ranked hit from a search. Distance is cosine
// distance (lower is closer); Relevance is 1 - Distance, which is only
// valid because cosine distance is bounded in [0,1] for the vectors we
// store. A substituted metric must redefine Relevance explicitly.
type QueryResult struct {
	ID        string
	Text      string
	Metadata  map[string]string
	Distance  float64
	Relevance float64
}

// MetadataFilter restricts a search to entries whose metadata it
// accepts. A nil filter accepts everything.
type MetadataFilter func(metadata map[string]string) bool

// SimilarityIndex stores (vector, text, metadata) triples and answers
// exact nearest-neighbor queries by cosine distance. Results come back
// in ascending distance order; ties are broken by insertion order,
// earliest first. Reads may run concurrently; writes are exclusive and
// atomic from a reader's perspective.
type SimilarityIndex interface {
	// InsertBatch adds entries, assigning each a unique ID. Returns the
	// number inserted. Fails with domain.ErrDimensionMismatch if any
	// vector does not match the index dimension; no entry of the batch
	// becomes visible in that case. An empty batch inserts zero entries.
	InsertBatch(entries []Entry) (int, error)

	// Search returns up to topK entries passing the filter, nearest
	// first. topK <= 0 fails with domain.ErrInvalidArgument; a query
	// vector of the wrong length fails with domain.ErrDimensionMismatch.
	Search(query []float32, topK int, filter MetadataFilter) ([]QueryResult, error)

	// Clear removes all entries and returns how many were removed.
	Clear() (int, error)

	// Count returns the number of stored entries.
	Count() int

	// Dimension returns the fixed vector dimension, or 0 if the index
	// is empty and no dimension was configured.
	Dimension() int
}
