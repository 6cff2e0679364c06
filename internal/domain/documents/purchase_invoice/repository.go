package purchase_invoice

import (
	"context"

	"backoffice/internal/core/id"
)

// Repository defines purchase invoice persistence.
type Repository interface {
	// Create inserts the header and its lines.
	Create(ctx context.Context, inv *Invoice) error

	// GetByID returns the header with lines.
	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	// MarkPosted records the journal entry an invoice was posted as.
	MarkPosted(ctx context.Context, invoiceID id.ID, entryID string) error
}
