package domain

// Chunk is a contiguous slice of a document's extracted text.
type Chunk struct {
	Text          string
	SequenceIndex int
	StartOffset   int
	EndOffset     int
}

// Source identifies one document that contributed retrieved chunks to
// an answer. RelevanceScore is the score of the first (highest-ranked)
// chunk seen for the file, rounded to three decimals.
type Source struct {
	Filename       string  `json:"filename"`
	FileType       string  `json:"file_type"`
	RelevanceScore float64 `json:"relevance_score"`
}

// AnswerRecord is the engine's response to a single question.
// Sources and Confidence are only populated when sources were requested.
type AnswerRecord struct {
	Answer          string   `json:"answer"`
	Question        string   `json:"question"`
	RetrievedChunks int      `json:"retrieved_chunks"`
	Sources         []Source `json:"sources,omitempty"`
	Confidence      string   `json:"confidence,omitempty"`
}

// Confidence labels assigned from the mean relevance of retrieved chunks.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// IngestResult summarizes a bulk ingestion run. One failing file does
// not abort the run; its error is collected here instead.
type IngestResult struct {
	FilesProcessed int
	FilesSkipped   int
	ChunksIndexed  int
	Errors         []string
}

// Stats describes the current state of the knowledge base.
type Stats struct {
	TotalDocuments int    `json:"total_documents"`
	TotalChunks    int    `json:"total_chunks"`
	EmbeddingModel string `json:"embedding_model"`
}

// Metadata keys stored alongside every indexed chunk.
const (
	MetaFilename    = "filename"
	MetaFileType    = "file_type"
	MetaChunkIndex  = "chunk_sequence_index"
	MetaStartOffset = "start_offset"
	MetaEndOffset   = "end_offset"
)
