// Package purchase_order provides read access to purchase orders and the status
// transitions goods intake applies to them.
package purchase_order

import (
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/id"
)

// Status of a purchase order.
type Status string

const (
	StatusDraft             Status = "draft"
	StatusApproved          Status = "approved"
	StatusSent              Status = "sent"
	StatusPartiallyReceived Status = "partially_received"
	StatusReceived          Status = "received"
	StatusCancelled         Status = "cancelled"
)

// PendingStatuses are the statuses still expecting deliveries.
var PendingStatuses = []Status{StatusApproved, StatusSent, StatusPartiallyReceived}

// PurchaseOrder is an order placed with a supplier.
type PurchaseOrder struct {
	ID            id.ID           `db:"id" json:"id"`
	CompanyID     string          `db:"company_id" json:"companyId"`
	Number        string          `db:"number" json:"number"`
	SupplierID    id.ID           `db:"supplier_id" json:"supplierId"`
	SupplierName  string          `db:"supplier_name" json:"supplierName"`
	SupplierGSTIN *string         `db:"supplier_gstin" json:"supplierGstin,omitempty"`
	Status        Status          `db:"status" json:"status"`
	OrderDate     time.Time       `db:"order_date" json:"orderDate"`
	ExpectedDate  *time.Time      `db:"expected_date" json:"expectedDate,omitempty"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"totalAmount"`

	Lines []Line `db:"-" json:"lines,omitempty"`
}

// Line is one ordered product.
type Line struct {
	ID          id.ID           `db:"id" json:"id"`
	OrderID     id.ID           `db:"order_id" json:"orderId"`
	ProductID   id.ID           `db:"product_id" json:"productId"`
	ProductName string          `db:"product_name" json:"productName"`
	OrderedQty  decimal.Decimal `db:"ordered_qty" json:"orderedQty"`
	ReceivedQty decimal.Decimal `db:"received_qty" json:"receivedQty"`
	UnitCost    decimal.Decimal `db:"unit_cost" json:"unitCost"`
	PendingQty  decimal.Decimal `db:"-" json:"pendingQty"`
}

// ComputePending sets PendingQty = max(ordered - received, 0).
func (l *Line) ComputePending() {
	pending := l.OrderedQty.Sub(l.ReceivedQty)
	if pending.IsNegative() {
		pending = decimal.Zero
	}
	l.PendingQty = pending
}

// IsPending reports whether the order still expects deliveries.
func (o *PurchaseOrder) IsPending() bool {
	for _, s := range PendingStatuses {
		if o.Status == s {
			return true
		}
	}
	return false
}
