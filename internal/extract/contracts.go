package extract

import (
	"context"
	"time"
)

// TextExtractor is Stage 1: stored file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string
	Pages    int
	Duration time.Duration
}
