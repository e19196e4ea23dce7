package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Analyzer is the single capability the pipeline depends on: document text
// in, typed fields out. Implemented by the local and cloud analyzers and by
// the fallback orchestrator, with an identical error taxonomy, so callers
// never know which one is in use.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (ExtractedFields, error)
}

// Invoker is the narrow backend-client capability an analyzer needs:
// rendered prompt in, raw model output out.
type Invoker interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// LocalAnalyzer drives the locally hosted model (Ollama).
type LocalAnalyzer struct {
	backend Invoker
	logger  *slog.Logger
}

func NewLocalAnalyzer(backend Invoker, logger *slog.Logger) *LocalAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalAnalyzer{backend: backend, logger: logger}
}

func (a *LocalAnalyzer) Analyze(ctx context.Context, text string) (ExtractedFields, error) {
	return analyzeWith(ctx, a.backend, "local", text, a.logger)
}

// CloudAnalyzer drives the hosted-API model (Mistral).
type CloudAnalyzer struct {
	backend Invoker
	logger  *slog.Logger
}

func NewCloudAnalyzer(backend Invoker, logger *slog.Logger) *CloudAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CloudAnalyzer{backend: backend, logger: logger}
}

func (a *CloudAnalyzer) Analyze(ctx context.Context, text string) (ExtractedFields, error) {
	return analyzeWith(ctx, a.backend, "cloud", text, a.logger)
}

// analyzeWith runs one backend attempt: build prompt, invoke, parse.
// Any invocation failure (timeout, connection refused, bad status) is
// wrapped into the uniform ErrBackendUnavailable so callers never need to
// know which concrete backend failed. Parser errors propagate unchanged.
func analyzeWith(ctx context.Context, backend Invoker, name, text string, logger *slog.Logger) (ExtractedFields, error) {
	start := time.Now()
	prompt := BuildPrompt(text)

	raw, err := backend.Invoke(ctx, prompt)
	if err != nil {
		logger.Warn("analysis.invoke.failed",
			"backend", name,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return ExtractedFields{}, fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, name, err)
	}

	fields, err := ParseResponse(raw, logger)
	if err != nil {
		return ExtractedFields{}, err
	}

	logger.Info("analysis.invoke.ok",
		"backend", name,
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fields, nil
}
