package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"docintake/internal/analysis"
	"docintake/internal/common"
	"docintake/internal/entity"
)

// CreateDocumentRequest wraps parameters for creating a document record.
type CreateDocumentRequest struct {
	Fields       analysis.ExtractedFields
	FilePath     string
	UploadedName string
}

// UpdateDocumentRequest carries field edits for the review workflow.
// Nil pointers leave a column untouched; the Clear* flags null it out.
type UpdateDocumentRequest struct {
	DocumentNumber *string
	DocumentDate   *time.Time
	Sender         *string
	Purpose        *string
	Amount         *decimal.Decimal

	ClearDocumentNumber bool
	ClearDocumentDate   bool
	ClearSender         bool
	ClearPurpose        bool
	ClearAmount         bool
}

type DocumentRepository interface {
	Create(ctx context.Context, req *CreateDocumentRequest) (*entity.Document, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.Document, error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateDocumentRequest) (*entity.Document, error)
	Delete(ctx context.Context, id uuid.UUID) (string, error)
}

type documentRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewDocumentRepository(pool *pgxpool.Pool, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepository{pool: pool, logger: logger}
}

const documentColumns = `id, document_number, document_date, sender, purpose, amount::text, file_path, uploaded_name, created_at, updated_at`

func (r *documentRepository) Create(ctx context.Context, req *CreateDocumentRequest) (*entity.Document, error) {
	var amount *string
	if req.Fields.Amount != nil {
		s := req.Fields.Amount.String()
		amount = &s
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO documents (id, document_number, document_date, sender, purpose, amount, file_path, uploaded_name)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8)
		RETURNING `+documentColumns,
		uuid.New(),
		req.Fields.DocumentNumber,
		req.Fields.DocumentDate,
		req.Fields.Sender,
		req.Fields.Purpose,
		amount,
		req.FilePath,
		req.UploadedName,
	)
	doc, err := scanDocument(row)
	if err != nil {
		r.logger.Error("failed to create document", "error", err)
		return nil, common.WrapError(err, "create document")
	}
	return doc, nil
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get document", "document_id", id, "error", err)
		return nil, common.WrapError(err, "get document")
	}
	return doc, nil
}

func (r *documentRepository) List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*entity.Document, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + documentColumns + ` FROM documents`
	args := []any{}
	cond := ""
	if from != nil {
		args = append(args, *from)
		cond = fmt.Sprintf(" WHERE document_date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		if cond == "" {
			cond = fmt.Sprintf(" WHERE document_date <= $%d", len(args))
		} else {
			cond += fmt.Sprintf(" AND document_date <= $%d", len(args))
		}
	}
	args = append(args, limit, offset)
	query += cond + fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list documents", "error", err)
		return nil, common.WrapError(err, "list documents")
	}
	defer rows.Close()

	var out []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan document")
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func (r *documentRepository) Update(ctx context.Context, id uuid.UUID, req *UpdateDocumentRequest) (*entity.Document, error) {
	set := []string{"updated_at = now()"}
	args := []any{id}

	add := func(col string, val any) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	addNumeric := func(col string, val *string) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d::numeric", col, len(args)))
	}

	if req.ClearDocumentNumber {
		set = append(set, "document_number = NULL")
	} else if req.DocumentNumber != nil {
		add("document_number", *req.DocumentNumber)
	}
	if req.ClearDocumentDate {
		set = append(set, "document_date = NULL")
	} else if req.DocumentDate != nil {
		add("document_date", *req.DocumentDate)
	}
	if req.ClearSender {
		set = append(set, "sender = NULL")
	} else if req.Sender != nil {
		add("sender", *req.Sender)
	}
	if req.ClearPurpose {
		set = append(set, "purpose = NULL")
	} else if req.Purpose != nil {
		add("purpose", *req.Purpose)
	}
	if req.ClearAmount {
		set = append(set, "amount = NULL")
	} else if req.Amount != nil {
		s := req.Amount.String()
		addNumeric("amount", &s)
	}

	query := `UPDATE documents SET ` + strings.Join(set, ", ") + ` WHERE id = $1 RETURNING ` + documentColumns
	row := r.pool.QueryRow(ctx, query, args...)
	doc, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to update document", "document_id", id, "error", err)
		return nil, common.WrapError(err, "update document")
	}
	return doc, nil
}

// Delete removes the record and returns the stored file path so the caller
// can delete the file as well.
func (r *documentRepository) Delete(ctx context.Context, id uuid.UUID) (string, error) {
	var filePath string
	err := r.pool.QueryRow(ctx, `DELETE FROM documents WHERE id = $1 RETURNING file_path`, id).Scan(&filePath)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to delete document", "document_id", id, "error", err)
		return "", common.WrapError(err, "delete document")
	}
	return filePath, nil
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var (
		doc       entity.Document
		amountStr *string
	)
	if err := row.Scan(
		&doc.ID,
		&doc.DocumentNumber,
		&doc.DocumentDate,
		&doc.Sender,
		&doc.Purpose,
		&amountStr,
		&doc.FilePath,
		&doc.UploadedName,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if amountStr != nil {
		d, err := decimal.NewFromString(*amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", *amountStr, err)
		}
		doc.Amount = &d
	}
	return &doc, nil
}
