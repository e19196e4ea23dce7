package analysis

import (
	"context"
	"fmt"
	"log/slog"
)

// FallbackAnalyzer routes one analysis run through a primary backend and,
// on a recoverable service failure, a secondary one. The source of truth
// for routing is deliberately a directly coded three-step progression
// (primary attempt, secondary attempt, done): the state space is fixed and
// small, so no graph engine is involved.
//
// Content errors (ErrMalformedResponse, ErrEmptyExtraction) short-circuit
// immediately: the document itself is unsuitable, and retrying the same text
// against another backend would only mask that from the caller.
type FallbackAnalyzer struct {
	primary   Analyzer
	secondary Analyzer
	logger    *slog.Logger
}

// runState is the ephemeral per-run state threaded through one fallback
// run. Created fresh per invocation, never shared and never persisted.
type runState struct {
	text          string
	result        *ExtractedFields
	lastErr       string
	needsFallback bool
}

func NewFallbackAnalyzer(primary, secondary Analyzer, logger *slog.Logger) *FallbackAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackAnalyzer{primary: primary, secondary: secondary, logger: logger}
}

// Analyze implements Analyzer. Primary is always attempted strictly before
// secondary; there is no speculative dual dispatch and no retry beyond the
// single fallback hop.
func (f *FallbackAnalyzer) Analyze(ctx context.Context, text string) (ExtractedFields, error) {
	st := runState{text: text}

	// primary attempt
	fields, err := f.primary.Analyze(ctx, st.text)
	switch {
	case err == nil:
		st.result = &fields
		st.needsFallback = false
	case IsContentError(err):
		return ExtractedFields{}, err
	default:
		st.lastErr = err.Error()
		st.needsFallback = true
		f.logger.Warn("analysis.fallback.primary_failed",
			"error", err,
			"text_len", len(st.text),
		)
	}

	// secondary attempt, only while control is being routed away from primary
	if st.needsFallback {
		fields, err := f.secondary.Analyze(ctx, st.text)
		switch {
		case err == nil:
			st.result = &fields
		case IsContentError(err):
			return ExtractedFields{}, err
		default:
			// last node; nothing further to fall back to
			st.lastErr = err.Error()
			f.logger.Warn("analysis.fallback.secondary_failed", "error", err)
		}
	}

	// done
	if st.result != nil {
		return *st.result, nil
	}
	return ExtractedFields{}, fmt.Errorf("%w: last error: %s", ErrAllBackendsUnavailable, st.lastErr)
}
