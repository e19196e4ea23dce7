package extract

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPDFExtractor_MissingFile(t *testing.T) {
	e := NewPDFExtractor(testLogger())
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}

func TestPDFExtractor_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("this is not a pdf"), 0o644))

	e := NewPDFExtractor(testLogger())
	_, err := e.Extract(context.Background(), path)
	assert.Error(t, err)
}

func TestPDFExtractor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewPDFExtractor(testLogger())
	_, err := e.Extract(ctx, "whatever.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}
