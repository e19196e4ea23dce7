package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"docintake/internal/analysis"
	"docintake/internal/backend/mistral"
	"docintake/internal/backend/ollama"
	"docintake/internal/common"
	"docintake/internal/export"
	"docintake/internal/extract"
	"docintake/internal/pipeline"
	"docintake/internal/repository"
	"docintake/internal/server"
	"docintake/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("creating DB pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := repository.HealthCheck(ctx, pool, cfg.Database.DialTimeout, logger); err != nil {
		logger.Error("DB health failed", "error", err)
		os.Exit(1)
	}
	logger.Info("DB health OK")

	store, err := storage.NewFileStore(cfg.Upload.Dir, logger)
	if err != nil {
		logger.Error("creating file store", "error", err)
		os.Exit(1)
	}

	analyzer, err := buildAnalyzer(cfg, logger)
	if err != nil {
		logger.Error("building analyzer", "error", err)
		os.Exit(1)
	}

	docs := repository.NewDocumentRepository(pool, logger)
	extractor := extract.NewPDFExtractor(logger)
	processor := pipeline.NewProcessor(store, extractor, analyzer, docs, logger)
	exporter := export.NewService(docs, logger)

	srv := server.New(processor, docs, store, exporter, pool, cfg.Upload.MaxBytes, logger)
	httpSrv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("HTTP serving", "addr", cfg.Server.HTTPAddr, "use_fallback", cfg.Analysis.UseFallback)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}
	logger.Info("stopped")
}

// buildAnalyzer assembles the analyzer graph from configuration: either the
// local analyzer alone, or the local->cloud fallback orchestrator.
func buildAnalyzer(cfg *common.Config, logger *slog.Logger) (analysis.Analyzer, error) {
	ollamaClient := ollama.NewClient(ollama.Config{
		BaseURL:     cfg.Ollama.BaseURL,
		Model:       cfg.Ollama.Model,
		Temperature: cfg.Ollama.Temperature,
		Timeout:     cfg.Ollama.Timeout,
	}, logger)
	local := analysis.NewLocalAnalyzer(ollamaClient, logger)

	if !cfg.Analysis.UseFallback {
		return local, nil
	}

	mistralClient, err := mistral.NewClient(mistral.Config{
		BaseURL:     cfg.Mistral.BaseURL,
		APIKey:      cfg.Mistral.APIKey,
		Model:       cfg.Mistral.Model,
		Temperature: cfg.Mistral.Temperature,
		MaxTokens:   cfg.Mistral.MaxTokens,
		Timeout:     cfg.Mistral.Timeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	cloud := analysis.NewCloudAnalyzer(mistralClient, logger)

	return analysis.NewFallbackAnalyzer(local, cloud, logger), nil
}
