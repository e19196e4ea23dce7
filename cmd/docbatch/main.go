package main

import (
	"context"
	"flag"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docintake/internal/analysis"
	"docintake/internal/async"
	"docintake/internal/backend/mistral"
	"docintake/internal/backend/ollama"
	"docintake/internal/common"
	"docintake/internal/extract"
	"docintake/internal/pipeline"
	"docintake/internal/repository"
	"docintake/internal/storage"
)

// docbatch walks a directory of PDFs and feeds each file through the intake
// pipeline using the worker queue.
func main() {
	dir := flag.String("dir", "", "directory to scan for PDF files")
	workers := flag.Int("workers", 4, "number of concurrent workers")
	timeout := flag.Duration("timeout", 3*time.Minute, "per-file processing timeout")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if *dir == "" {
		logger.Error("-dir is required")
		os.Exit(1)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("creating DB pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

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
	processor := pipeline.NewProcessor(store, extract.NewPDFExtractor(logger), analyzer, docs, logger)

	queue := async.NewIngestQueue(processor, logger,
		async.WithWorkers(*workers),
		async.WithProcessTimeout(*timeout),
	)

	queued := 0
	err = filepath.WalkDir(*dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || isHidden(path) {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != ".pdf" {
			return nil
		}
		queued++
		return queue.Enqueue(ctx, async.Job{Path: path, SubmittedAt: time.Now()})
	})
	if err != nil {
		logger.Error("directory walk failed", "dir", *dir, "error", err)
	}
	logger.Info("directory scan complete", "dir", *dir, "queued", queued)

	drainCtx, cancel := context.WithTimeout(context.Background(), time.Duration(queued+1)*(*timeout))
	defer cancel()
	queue.Shutdown(drainCtx)
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

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
