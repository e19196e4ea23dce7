package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"docintake/internal/analysis"
	"docintake/internal/entity"
	"docintake/internal/extract"
	"docintake/internal/repository"
)

// Pipeline-level errors. Backend and content errors come from the analysis
// package unchanged.
var (
	// ErrInvalidFileType: the upload is not a PDF. Raised before anything is
	// stored, so no cleanup is needed.
	ErrInvalidFileType = errors.New("only PDF uploads are accepted")

	// ErrExtractionFailed: text extraction from the saved file failed.
	ErrExtractionFailed = errors.New("failed to extract text from PDF")
)

// FileStore is the storage capability the pipeline needs.
type FileStore interface {
	Save(r io.Reader, originalName string) (string, error)
	Remove(path string) error
}

// Upload describes one incoming document.
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// Processor orchestrates storage, text extraction, analysis and persistence
// for one uploaded file.
//
// Cleanup invariant: once the upload is saved, every failure path (extraction,
// content error, backend exhaustion, persistence) deletes the stored file
// before the error is surfaced. Only on full success does the file persist
// and a database record get created.
type Processor struct {
	store     FileStore
	extractor extract.TextExtractor
	analyzer  analysis.Analyzer
	docs      repository.DocumentRepository
	logger    *slog.Logger
}

func NewProcessor(
	store FileStore,
	extractor extract.TextExtractor,
	analyzer analysis.Analyzer,
	docs repository.DocumentRepository,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		store:     store,
		extractor: extractor,
		analyzer:  analyzer,
		docs:      docs,
		logger:    logger,
	}
}

// ProcessDocument runs the full intake flow for one upload.
func (p *Processor) ProcessDocument(ctx context.Context, up Upload) (*entity.Document, error) {
	start := time.Now()

	if !strings.HasPrefix(up.ContentType, "application/pdf") {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidFileType, up.ContentType)
	}

	path, err := p.store.Save(up.Reader, up.Filename)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	res, err := p.extractor.Extract(ctx, path)
	if err != nil {
		p.cleanup(path)
		p.logger.Warn("pipeline.extract.failed", "file", up.Filename, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	fields, err := p.analyzer.Analyze(ctx, res.Text)
	if err != nil {
		p.cleanup(path)
		p.logger.Warn("pipeline.analyze.failed",
			"file", up.Filename,
			"content_error", analysis.IsContentError(err),
			"error", err,
		)
		return nil, err
	}

	doc, err := p.docs.Create(ctx, &repository.CreateDocumentRequest{
		Fields:       fields,
		FilePath:     path,
		UploadedName: up.Filename,
	})
	if err != nil {
		p.cleanup(path)
		return nil, fmt.Errorf("persist document: %w", err)
	}

	p.logger.Info("pipeline.process.ok",
		"document_id", doc.ID,
		"file", up.Filename,
		"pages", res.Pages,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return doc, nil
}

// ProcessPath runs the intake flow for a PDF already on disk (batch ingest).
// The file is copied into managed storage; the source is left in place.
func (p *Processor) ProcessPath(ctx context.Context, path string) (*entity.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return p.ProcessDocument(ctx, Upload{
		Reader:      f,
		Filename:    filepath.Base(path),
		ContentType: "application/pdf",
	})
}

func (p *Processor) cleanup(path string) {
	if err := p.store.Remove(path); err != nil {
		p.logger.Error("pipeline.cleanup.failed", "path", path, "error", err)
	}
}
