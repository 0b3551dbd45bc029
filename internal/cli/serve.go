package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"kbrag/internal/adapter/embedding"
	"kbrag/internal/adapter/generation"
	"kbrag/internal/server"
	"kbrag/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the knowledge-base HTTP API with upload, query, stats, clear
and health endpoints.

Example:
  kbrag serve --addr 127.0.0.1:8000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger(cfg.Logging.Level)

	idx, closeIndex, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer closeIndex()

	ingest, err := newIngestUseCase(cfg, idx)
	if err != nil {
		return err
	}

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		return err
	}
	generator, err := generation.New(cfg.Generation)
	if err != nil {
		return err
	}
	engine := usecase.NewEngine(idx, embedder, generator)

	uploadDir := cfg.Server.UploadDir
	if !filepath.IsAbs(uploadDir) {
		uploadDir = filepath.Join(rootDir, uploadDir)
	}

	srv := server.New(engine, ingest, idx, server.Options{
		UploadDir:   uploadDir,
		DefaultTopK: cfg.Retrieve.TopK,
		ModelName:   generator.ModelName(),
		Logger:      logger,
	})

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr, "chunks", idx.Count())
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
	}

	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
