package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads the embedded text layer of a PDF.
// Library used: github.com/ledongthuc/pdf. Scanned documents without a text
// layer yield empty text, which the analysis stage rejects as content-empty.
type PDFExtractor struct {
	logger *slog.Logger
}

func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{logger: logger}
}

func (e *PDFExtractor) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	if err := ctx.Err(); err != nil {
		return TextExtractionResult{}, err
	}
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return TextExtractionResult{}, fmt.Errorf("read pdf %s: %w", path, err)
	}

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		e.logger.Warn("extract.pdf.open_failed", "path", path, "error", err)
		return TextExtractionResult{}, fmt.Errorf("open pdf %s: %w", path, err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		e.logger.Warn("extract.pdf.text_failed", "path", path, "error", err)
		return TextExtractionResult{}, fmt.Errorf("extract pdf text %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return TextExtractionResult{}, fmt.Errorf("read pdf text %s: %w", path, err)
	}

	res := TextExtractionResult{
		Text:     buf.String(),
		Pages:    pdfReader.NumPage(),
		Duration: time.Since(start),
	}
	e.logger.Info("extract.pdf.ok",
		"path", path,
		"pages", res.Pages,
		"text_len", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
