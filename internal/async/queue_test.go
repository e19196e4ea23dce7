package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docintake/internal/entity"
)

type countingIngestor struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (c *countingIngestor) ProcessPath(_ context.Context, path string) (*entity.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paths = append(c.paths, path)
	if c.err != nil {
		return nil, c.err
	}
	return &entity.Document{ID: uuid.New(), FilePath: path}, nil
}

func (c *countingIngestor) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.paths)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIngestQueue_ProcessesAllJobs(t *testing.T) {
	ing := &countingIngestor{}
	q := NewIngestQueue(ing, testLogger(), WithWorkers(3))

	for i := 0; i < 20; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: "/in/doc.pdf", SubmittedAt: time.Now()}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.Equal(t, 20, ing.count())
}

func TestIngestQueue_KeepsGoingAfterFailures(t *testing.T) {
	ing := &countingIngestor{err: errors.New("extraction failed")}
	q := NewIngestQueue(ing, testLogger(), WithWorkers(1))

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: "/in/bad.pdf"}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.Equal(t, 5, ing.count(), "one bad file must not stop the batch")
}

func TestIngestQueue_EnqueueAfterShutdownIsDropped(t *testing.T) {
	ing := &countingIngestor{}
	q := NewIngestQueue(ing, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.Shutdown(ctx)

	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "/in/late.pdf"}))
	assert.Equal(t, 0, ing.count())
}

func TestIngestQueue_ShutdownIsIdempotent(t *testing.T) {
	q := NewIngestQueue(&countingIngestor{}, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.Shutdown(ctx)
	q.Shutdown(ctx)
}
