package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Document represents an analyzed document for data transfer between layers.
// The five extracted fields are nullable: the analyzer guarantees that at
// least one of them is set on creation, but edits may clear individual ones.
type Document struct {
	ID             uuid.UUID        `json:"id"`
	DocumentNumber *string          `json:"document_number,omitempty"`
	DocumentDate   *time.Time       `json:"document_date,omitempty"`
	Sender         *string          `json:"sender,omitempty"`
	Purpose        *string          `json:"purpose,omitempty"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	FilePath       string           `json:"file_path"`
	UploadedName   string           `json:"uploaded_name"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
