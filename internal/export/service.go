package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"docintake/internal/repository"
)

// Service produces XLSX bytes for the document register.
type Service struct {
	docs   repository.DocumentRepository
	logger *slog.Logger
}

func NewService(docs repository.DocumentRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{docs: docs, logger: logger}
}

// ExportDocumentsXLSX returns an XLSX workbook for the given date window.
// If only from is provided -> from..today (inclusive).
// If neither is provided   -> all documents.
func (s *Service) ExportDocumentsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		toDate = &t
	}

	f := excelize.NewFile()
	const sheet = "Documents"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Document Number",
		"Document Date",
		"Sender",
		"Purpose",
		"Amount",
		"Uploaded Name",
		"File Path",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	// page through the full window; a single capped query would silently
	// truncate large registers
	const pageSize = 200
	row := 2
	for offset := 0; ; offset += pageSize {
		docs, err := s.docs.List(ctx, fromDate, toDate, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("query documents: %w", err)
		}
		for _, d := range docs {
			values := []any{
				derefOr(d.DocumentNumber, ""),
				"",
				derefOr(d.Sender, ""),
				derefOr(d.Purpose, ""),
				"",
				d.UploadedName,
				d.FilePath,
			}
			if d.DocumentDate != nil {
				values[1] = d.DocumentDate.Format("2006-01-02")
			}
			if d.Amount != nil {
				values[4] = d.Amount.String()
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				_ = f.SetCellValue(sheet, cell, v)
			}
			row++
		}
		if len(docs) < pageSize {
			break
		}
	}

	// drop the default sheet if it is not ours
	if name := f.GetSheetName(0); name != sheet {
		_ = f.DeleteSheet(name)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.documents.ok",
		"rows", row-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func derefOr(s *string, def string) string {
	if s != nil {
		return *s
	}
	return def
}
