package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"kbrag/internal/domain"
)

type queryRequest struct {
	Question       string `json:"question"`
	TopK           int    `json:"top_k"`
	IncludeSources *bool  `json:"include_sources"`
}

type fileStatus struct {
	Filename string `json:"filename"`
	Status   string `json:"status"` // "processed", "skipped" or "failed"
	Chunks   int    `json:"chunks,omitempty"`
	Error    string `json:"error,omitempty"`
}

type uploadResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Files   []fileStatus `json:"files"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Knowledge Base RAG API",
		"endpoints": map[string]string{
			"upload": "/upload",
			"query":  "/query",
			"stats":  "/stats",
			"clear":  "/clear",
			"health": "/health",
		},
	})
}

// handleUpload accepts a multipart batch of documents. Each file is
// reported individually; one failing file does not fail the request.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	const maxUploadSize = 64 << 20
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart request: "+err.Error())
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to prepare upload directory")
		return
	}

	statuses := make([]fileStatus, 0, len(headers))
	processed := 0
	supported := 0

	for _, header := range headers {
		name := filepath.Base(header.Filename)

		if !s.ingest.Supported(name) {
			statuses = append(statuses, fileStatus{Filename: name, Status: "skipped", Error: "unsupported format"})
			continue
		}
		supported++

		path := filepath.Join(s.uploadDir, name)
		if err := saveUpload(header, path); err != nil {
			statuses = append(statuses, fileStatus{Filename: name, Status: "failed", Error: err.Error()})
			continue
		}

		chunks, err := s.ingest.IngestFile(r.Context(), path)
		if err != nil {
			s.logger.Error("ingestion failed", "file", name, "error", err)
			statuses = append(statuses, fileStatus{Filename: name, Status: "failed", Error: err.Error()})
			continue
		}

		statuses = append(statuses, fileStatus{Filename: name, Status: "processed", Chunks: chunks})
		processed++
	}

	if supported == 0 {
		s.writeError(w, http.StatusBadRequest, "no valid document files provided")
		return
	}
	if processed == 0 {
		s.writeError(w, http.StatusInternalServerError, "failed to process any documents")
		return
	}

	s.writeJSON(w, http.StatusOK, uploadResponse{
		Status:  "success",
		Message: fmt.Sprintf("Processed %d documents", processed),
		Files:   statuses,
	})
}

func saveUpload(header *multipart.FileHeader, path string) error {
	src, err := header.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		s.writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.defaultTopK
	}
	includeSources := true
	if req.IncludeSources != nil {
		includeSources = *req.IncludeSources
	}

	record, err := s.engine.Answer(r.Context(), req.Question, topK, includeSources)
	if err != nil {
		s.logger.Error("query failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	docs := 0
	if entries, err := os.ReadDir(s.uploadDir); err == nil {
		for _, e := range entries {
			if !e.IsDir() && s.ingest.Supported(e.Name()) {
				docs++
			}
		}
	}

	s.writeJSON(w, http.StatusOK, domain.Stats{
		TotalDocuments: docs,
		TotalChunks:    s.index.Count(),
		EmbeddingModel: s.modelName,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	removed, err := s.index.Clear()
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to clear index: "+err.Error())
		return
	}

	if entries, err := os.ReadDir(s.uploadDir); err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				os.Remove(filepath.Join(s.uploadDir, e.Name()))
			}
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":         "success",
		"message":        "Knowledge base cleared",
		"chunks_removed": removed,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"model":  s.modelName,
	})
}
