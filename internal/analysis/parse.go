package analysis

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// fieldKeys are the five keys we read from a backend response.
var fieldKeys = []string{"document_number", "document_date", "sender", "purpose", "amount"}

// isoDateLayouts are accepted document_date formats, most specific first.
var isoDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseResponse converts a raw backend response into ExtractedFields.
//
// The response may be wrapped in a fenced code block; only a leading and a
// trailing fence marker are removed. The remaining text must be a JSON
// object (ErrMalformedResponse otherwise) with at least one of the five
// known fields non-null (ErrEmptyExtraction otherwise). A date or amount
// that is present but unconvertible degrades to null instead of failing the
// whole parse: a bad date string should not invalidate an otherwise useful
// record.
func ParseResponse(raw string, logger *slog.Logger) (ExtractedFields, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cleaned := stripCodeFence(raw)

	if err := ValidateJSONAgainstSchema(BuildResponseJSONSchema(), []byte(cleaned)); err != nil {
		logger.Error("analysis.parse.malformed", "error", err, "raw_bytes", len(raw))
		return ExtractedFields{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	// Decode with UseNumber so amounts never round-trip through a float64.
	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		logger.Error("analysis.parse.decode_failed", "error", err)
		return ExtractedFields{}, fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err)
	}

	if !hasUsefulField(obj) {
		logger.Warn("analysis.parse.empty_extraction", "raw_bytes", len(raw))
		return ExtractedFields{}, ErrEmptyExtraction
	}

	out := ExtractedFields{
		DocumentNumber: stringField(obj, "document_number"),
		Sender:         stringField(obj, "sender"),
		Purpose:        stringField(obj, "purpose"),
	}

	if s, ok := obj["document_date"].(string); ok {
		if t, err := parseISODate(s); err == nil {
			out.DocumentDate = &t
		} else {
			logger.Warn("analysis.parse.bad_date", "value", s)
		}
	}

	if v, ok := obj["amount"]; ok && v != nil {
		if d, err := parseAmount(v); err == nil {
			out.Amount = &d
		} else {
			logger.Warn("analysis.parse.bad_amount", "value", fmt.Sprintf("%v", v))
		}
	}

	return out, nil
}

// stripCodeFence removes a leading and trailing triple-backtick fence
// (with an optional language tag) and nothing else.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = s[3:]
		// drop the language tag up to the first newline, e.g. "json"
		if i := strings.IndexByte(s, '\n'); i >= 0 && len(strings.Fields(s[:i])) <= 1 {
			s = s[i+1:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func hasUsefulField(obj map[string]any) bool {
	for _, k := range fieldKeys {
		if v, ok := obj[k]; ok && v != nil {
			return true
		}
	}
	return false
}

func stringField(obj map[string]any, key string) *string {
	if s, ok := obj[key].(string); ok {
		return &s
	}
	return nil
}

func parseISODate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

// parseAmount converts an amount value to an exact decimal via its string
// representation, never through a binary float.
func parseAmount(v any) (decimal.Decimal, error) {
	switch a := v.(type) {
	case json.Number:
		return decimal.NewFromString(a.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(a))
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported amount type %T", v)
	}
}
