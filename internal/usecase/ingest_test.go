package usecase

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kbrag/internal/adapter/chunker"
	"kbrag/internal/adapter/embedding"
	"kbrag/internal/adapter/extractor"
	"kbrag/internal/adapter/fs"
	"kbrag/internal/adapter/index"
	"kbrag/internal/domain"
)

func newTestIngest(t *testing.T, idx *index.Memory) *IngestUseCase {
	t.Helper()

	ch, err := chunker.NewSentenceChunker(100, 20)
	if err != nil {
		t.Fatal(err)
	}
	return NewIngestUseCase(
		extractor.NewRegistry(),
		ch,
		embedding.NewMockEmbedder(16),
		idx,
		fs.NewWalker([]string{"**/*"}, nil),
	)
}

func TestIngestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := strings.Repeat("This is a test document. ", 50)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	idx := index.NewMemory(0)
	u := newTestIngest(t, idx)

	n, err := u.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if n == 0 {
		t.Fatal("expected chunks to be indexed")
	}
	if idx.Count() != n {
		t.Errorf("index count %d does not match inserted %d", idx.Count(), n)
	}

	// Every entry carries the shared metadata contract.
	vec, err := embedding.NewMockEmbedder(16).Embed(context.Background(), "test document")
	if err != nil {
		t.Fatal(err)
	}
	results, err := idx.Search(vec, n, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range results {
		if r.Metadata[domain.MetaFilename] != "notes.txt" {
			t.Errorf("expected filename notes.txt, got %q", r.Metadata[domain.MetaFilename])
		}
		if r.Metadata[domain.MetaFileType] != ".txt" {
			t.Errorf("expected file type .txt, got %q", r.Metadata[domain.MetaFileType])
		}
		for _, key := range []string{domain.MetaChunkIndex, domain.MetaStartOffset, domain.MetaEndOffset} {
			if r.Metadata[key] == "" {
				t.Errorf("missing metadata key %s", key)
			}
		}
	}
}

func TestIngestFileEmptyDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, []byte("   \n  "), 0644); err != nil {
		t.Fatal(err)
	}

	idx := index.NewMemory(0)
	u := newTestIngest(t, idx)

	n, err := u.IngestFile(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 || idx.Count() != 0 {
		t.Errorf("expected nothing indexed for whitespace document, got n=%d count=%d", n, idx.Count())
	}
}

func TestIngestDirPartialSuccess(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"a.txt": strings.Repeat("Document a content. ", 20),
		"b.md":  strings.Repeat("Document b content. ", 20),
		"c.csv": "unsupported,format",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// A .docx that is not a zip archive fails extraction but must not
	// abort the run.
	if err := os.WriteFile(filepath.Join(dir, "broken.docx"), []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}

	idx := index.NewMemory(0)
	u := newTestIngest(t, idx)

	var progressCalls int
	result, err := u.IngestDir(context.Background(), dir, func(done, total int) {
		progressCalls++
		if total != 4 {
			t.Errorf("expected total 4, got %d", total)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	if result.FilesProcessed != 2 {
		t.Errorf("expected 2 processed, got %d", result.FilesProcessed)
	}
	if result.FilesSkipped != 1 {
		t.Errorf("expected 1 skipped, got %d", result.FilesSkipped)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "broken.docx") {
		t.Errorf("expected one error for broken.docx, got %v", result.Errors)
	}
	if result.ChunksIndexed == 0 || idx.Count() != result.ChunksIndexed {
		t.Errorf("chunk accounting mismatch: result=%d index=%d", result.ChunksIndexed, idx.Count())
	}
	if progressCalls != 4 {
		t.Errorf("expected 4 progress callbacks, got %d", progressCalls)
	}
}

func TestIngestDirCancellation(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Some content here."), 0644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u := newTestIngest(t, index.NewMemory(0))
	_, err := u.IngestDir(ctx, dir, nil)
	if err == nil {
		t.Error("expected context cancellation to surface")
	}
}
