package analysis

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExtractedFields is the normalized shape we want from the model.
// Every field is optional, but a record with all five unset is a parsing
// failure (ErrEmptyExtraction), never a valid result.
type ExtractedFields struct {
	DocumentNumber *string          `json:"document_number"`
	DocumentDate   *time.Time       `json:"document_date"`
	Sender         *string          `json:"sender"`
	Purpose        *string          `json:"purpose"`
	Amount         *decimal.Decimal `json:"amount"`
}

// IsEmpty reports whether no field was extracted.
func (f ExtractedFields) IsEmpty() bool {
	return f.DocumentNumber == nil &&
		f.DocumentDate == nil &&
		f.Sender == nil &&
		f.Purpose == nil &&
		f.Amount == nil
}
