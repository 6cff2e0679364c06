// Package stock provides the stock movement register.
// Every quantity change of a batch at a location is recorded against the document that caused it.
package stock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/id"
)

// RecordType is the direction of a movement.
type RecordType string

const (
	RecordTypeReceipt RecordType = "receipt"
	RecordTypeExpense RecordType = "expense"
)

// Movement is one register entry.
type Movement struct {
	ID           id.ID           `db:"id" json:"id"`
	CompanyID    string          `db:"company_id" json:"companyId"`
	RecorderType string          `db:"recorder_type" json:"recorderType"`
	RecorderID   id.ID           `db:"recorder_id" json:"recorderId"`
	LineNo       int             `db:"line_no" json:"lineNo"`
	RecordType   RecordType      `db:"record_type" json:"recordType"`
	ProductID    id.ID           `db:"product_id" json:"productId"`
	BatchID      *id.ID          `db:"batch_id" json:"batchId,omitempty"`
	LocationID   *id.ID          `db:"location_id" json:"locationId,omitempty"`
	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	Period       time.Time       `db:"period" json:"period"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
}

// Repository defines operations for the stock register.
type Repository interface {
	// CreateMovements batch inserts movements. Called inside the recorder's transaction.
	CreateMovements(ctx context.Context, movements []Movement) error

	// GetMovementsByRecorder returns the movements of one document in line order.
	GetMovementsByRecorder(ctx context.Context, companyID string, recorderID id.ID) ([]Movement, error)
}
