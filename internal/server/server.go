// Package server exposes the knowledge base over HTTP: document upload,
// querying, stats, clearing and health.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"kbrag/internal/port"
	"kbrag/internal/usecase"
)

// Server wires the ingest and answer use cases to HTTP handlers.
type Server struct {
	engine      *usecase.Engine
	ingest      *usecase.IngestUseCase
	index       port.SimilarityIndex
	uploadDir   string
	defaultTopK int
	modelName   string
	logger      *slog.Logger
	router      *mux.Router
}

// Options configures a Server.
type Options struct {
	UploadDir   string
	DefaultTopK int
	ModelName   string // generation model, reported by /health
	Logger      *slog.Logger
}

// New creates a server and registers its routes.
func New(engine *usecase.Engine, ingest *usecase.IngestUseCase, index port.SimilarityIndex, opts Options) *Server {
	if opts.DefaultTopK <= 0 {
		opts.DefaultTopK = 5
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		engine:      engine,
		ingest:      ingest,
		index:       index,
		uploadDir:   opts.UploadDir,
		defaultTopK: opts.DefaultTopK,
		modelName:   opts.ModelName,
		logger:      opts.Logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/clear", s.handleClear).Methods(http.MethodDelete)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.router = r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
