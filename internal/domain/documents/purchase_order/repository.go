package purchase_order

import (
	"context"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/id"
)

// Repository defines purchase order persistence.
type Repository interface {
	// ListByStatus returns company orders in any of the statuses, newest first, without lines.
	ListByStatus(ctx context.Context, companyID string, statuses []Status) ([]*PurchaseOrder, error)

	// GetByID returns the order header with supplier name and GSTIN.
	GetByID(ctx context.Context, companyID string, orderID id.ID) (*PurchaseOrder, error)

	// GetLines returns the order lines in line order.
	GetLines(ctx context.Context, orderID id.ID) ([]Line, error)

	// SetStatus changes the order status. Returns NotFound when the order does not exist.
	SetStatus(ctx context.Context, companyID string, orderID id.ID, status Status) error

	// AddReceivedQty increments received_qty of an order line.
	AddReceivedQty(ctx context.Context, orderID, lineID id.ID, qty decimal.Decimal) error
}
