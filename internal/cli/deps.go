package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"kbrag/config"
	"kbrag/internal/adapter/chunker"
	"kbrag/internal/adapter/embedding"
	"kbrag/internal/adapter/extractor"
	"kbrag/internal/adapter/fs"
	"kbrag/internal/adapter/index"
	"kbrag/internal/port"
	"kbrag/internal/usecase"
)

// openIndex opens the configured similarity index. The returned close
// function is a no-op for the in-memory backend.
func openIndex(cfg *config.Config) (port.SimilarityIndex, func() error, error) {
	if cfg.Index.Path == "" {
		return index.NewMemory(cfg.Embedding.Dimension), func() error { return nil }, nil
	}

	path := cfg.Index.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(rootDir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open index: %w", err)
	}

	idx, err := index.NewBolt(db, cfg.Embedding.Dimension)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return idx, idx.Close, nil
}

// newIngestUseCase assembles the ingestion pipeline from configuration.
func newIngestUseCase(cfg *config.Config, idx port.SimilarityIndex) (*usecase.IngestUseCase, error) {
	ch, err := chunker.NewSentenceChunker(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		return nil, err
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return nil, err
	}

	walker := fs.NewWalker(cfg.Ingest.Includes, cfg.Ingest.Excludes)
	return usecase.NewIngestUseCase(extractor.NewRegistry(), ch, embedder, idx, walker), nil
}
