package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"kbrag/internal/adapter/chunker"
	"kbrag/internal/adapter/extractor"
	"kbrag/internal/adapter/fs"
	"kbrag/internal/domain"
	"kbrag/internal/port"
)

// IngestUseCase turns document files into indexed chunks:
// extract -> chunk -> embed -> insert.
type IngestUseCase struct {
	extractor *extractor.Registry
	chunker   *chunker.SentenceChunker
	embedder  port.Embedder
	index     port.SimilarityIndex
	walker    *fs.Walker
}

// NewIngestUseCase creates a new ingest use case.
func NewIngestUseCase(
	registry *extractor.Registry,
	ch *chunker.SentenceChunker,
	embedder port.Embedder,
	index port.SimilarityIndex,
	walker *fs.Walker,
) *IngestUseCase {
	return &IngestUseCase{
		extractor: registry,
		chunker:   ch,
		embedder:  embedder,
		index:     index,
		walker:    walker,
	}
}

// Supported reports whether the file can be ingested.
func (u *IngestUseCase) Supported(name string) bool {
	return u.extractor.Supported(name)
}

// IngestFile extracts, chunks, embeds and indexes a single document.
// Returns the number of chunks indexed.
func (u *IngestUseCase) IngestFile(ctx context.Context, path string) (int, error) {
	text, err := u.extractor.Extract(path)
	if err != nil {
		return 0, err
	}

	chunks := u.chunker.Chunk(text)
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := u.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed %s: %w", filepath.Base(path), err)
	}

	filename := filepath.Base(path)
	fileType := strings.ToLower(filepath.Ext(path))

	entries := make([]port.Entry, len(chunks))
	for i, c := range chunks {
		entries[i] = port.Entry{
			Vector: vectors[i],
			Text:   c.Text,
			Metadata: map[string]string{
				domain.MetaFilename:    filename,
				domain.MetaFileType:    fileType,
				domain.MetaChunkIndex:  strconv.Itoa(c.SequenceIndex),
				domain.MetaStartOffset: strconv.Itoa(c.StartOffset),
				domain.MetaEndOffset:   strconv.Itoa(c.EndOffset),
			},
		}
	}

	return u.index.InsertBatch(entries)
}

// IngestDir ingests every supported document under root. A failing file
// is recorded in the result and does not abort the rest. The optional
// progress callback receives (done, total) after each file.
func (u *IngestUseCase) IngestDir(ctx context.Context, root string, progress func(done, total int)) (*domain.IngestResult, error) {
	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	result := &domain.IngestResult{}
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if !u.extractor.Supported(path) {
			result.FilesSkipped++
		} else if n, err := u.IngestFile(ctx, path); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
		} else {
			result.FilesProcessed++
			result.ChunksIndexed += n
		}

		if progress != nil {
			progress(i+1, len(files))
		}
	}

	return result, nil
}
