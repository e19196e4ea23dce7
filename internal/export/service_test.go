package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docintake/internal/entity"
	"docintake/internal/repository"
)

type fakeRepo struct {
	docs      []*entity.Document
	listErr   error
	listCalls int
	lastFrom  *time.Time
	lastTo    *time.Time
}

func (f *fakeRepo) Create(context.Context, *repository.CreateDocumentRequest) (*entity.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRepo) GetByID(context.Context, uuid.UUID) (*entity.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRepo) List(_ context.Context, from, to *time.Time, limit, offset int) ([]*entity.Document, error) {
	f.lastFrom, f.lastTo = from, to
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	if offset >= len(f.docs) {
		return nil, nil
	}
	end := offset + limit
	if end > len(f.docs) {
		end = len(f.docs)
	}
	return f.docs[offset:end], nil
}

func (f *fakeRepo) Update(context.Context, uuid.UUID, *repository.UpdateDocumentRequest) (*entity.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRepo) Delete(context.Context, uuid.UUID) (string, error) {
	return "", errors.New("not implemented")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExportDocumentsXLSX(t *testing.T) {
	num := "INV-TEST-123"
	sender := "ООО Ромашка"
	purpose := "Оплата за услуги"
	date := time.Date(2024, 10, 29, 0, 0, 0, 0, time.UTC)
	amount := decimal.RequireFromString("15000.50")

	repo := &fakeRepo{docs: []*entity.Document{{
		ID:             uuid.New(),
		DocumentNumber: &num,
		DocumentDate:   &date,
		Sender:         &sender,
		Purpose:        &purpose,
		Amount:         &amount,
		FilePath:       "/uploads/abc.pdf",
		UploadedName:   "invoice.pdf",
	}, {
		ID:           uuid.New(),
		FilePath:     "/uploads/def.pdf",
		UploadedName: "scan.pdf",
	}}}

	data, err := NewService(repo, testLogger()).ExportDocumentsXLSX(context.Background(), nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{"Documents"}, wb.GetSheetList())

	rows, err := wb.GetRows("Documents")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Document Number", rows[0][0])
	assert.Equal(t, "INV-TEST-123", rows[1][0])
	assert.Equal(t, "2024-10-29", rows[1][1])
	assert.Equal(t, "ООО Ромашка", rows[1][2])
	assert.Equal(t, "15000.5", rows[1][4])
	assert.Equal(t, "scan.pdf", rows[2][5])
}

func TestExportDocumentsXLSX_LargeRegisterExportsEveryRow(t *testing.T) {
	repo := &fakeRepo{}
	for i := 0; i < 450; i++ {
		num := fmt.Sprintf("DOC-%03d", i)
		repo.docs = append(repo.docs, &entity.Document{
			ID:             uuid.New(),
			DocumentNumber: &num,
			FilePath:       "/uploads/" + num + ".pdf",
			UploadedName:   num + ".pdf",
		})
	}

	data, err := NewService(repo, testLogger()).ExportDocumentsXLSX(context.Background(), nil, nil)
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Documents")
	require.NoError(t, err)
	require.Len(t, rows, 451, "every document must be exported, not just the first page")

	assert.Equal(t, "DOC-000", rows[1][0])
	assert.Equal(t, "DOC-449", rows[450][0])
	assert.GreaterOrEqual(t, repo.listCalls, 3, "the window is fetched page by page")
}

func TestExportDocumentsXLSX_FromOnlyGetsUpperBound(t *testing.T) {
	repo := &fakeRepo{}
	from := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)

	_, err := NewService(repo, testLogger()).ExportDocumentsXLSX(context.Background(), &from, nil)
	require.NoError(t, err)

	require.NotNil(t, repo.lastFrom)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *repo.lastFrom, "from is truncated to midnight")
	require.NotNil(t, repo.lastTo, "an open-ended from window is capped at today")
}

func TestExportDocumentsXLSX_ListError(t *testing.T) {
	repo := &fakeRepo{listErr: errors.New("db down")}
	_, err := NewService(repo, testLogger()).ExportDocumentsXLSX(context.Background(), nil, nil)
	assert.Error(t, err)
}
