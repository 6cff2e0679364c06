// Package entity provides base types for persisted documents.
package entity

import (
	"context"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
)

// Validatable is implemented by entities that check their own invariants
// without database access.
type Validatable interface {
	Validate(ctx context.Context) error
}

// Document is the base type for business documents (receipts, invoices).
type Document struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// CompanyID scopes the document; every query filters on it.
	CompanyID string `db:"company_id" json:"companyId"`

	// Number is the human-readable document number, unique per company.
	Number string `db:"number" json:"number"`

	// Date is the business date of the document
	Date time.Time `db:"date" json:"date"`

	// Status is the document lifecycle state.
	Status string `db:"status" json:"status"`

	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewDocument creates a Document with generated ID and timestamps.
func NewDocument(companyID string, date time.Time, status string) Document {
	now := time.Now().UTC()
	if date.IsZero() {
		date = now
	}
	return Document{
		ID:        id.New(),
		CompanyID: companyID,
		Date:      date,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate implements Validatable.
func (d *Document) Validate(ctx context.Context) error {
	if d.CompanyID == "" {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}
	if d.Date.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	return nil
}

// Touch bumps UpdatedAt.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UTC()
}
