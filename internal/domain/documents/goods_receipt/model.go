// Package goods_receipt provides goods-receipt intake: recording that purchased goods
// arrived, resolving batches, costing, product master updates, purchase-order progress
// and the derived purchase invoice, followed by ledger posting.
package goods_receipt

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
)

// StatusReceived is the only status intake assigns.
const StatusReceived = "received"

// EntityType names receipts in the audit trail.
const EntityType = "goods_receipt"

// GoodsReceipt is the receipt header (GRN).
type GoodsReceipt struct {
	entity.Document

	SupplierID      id.ID           `db:"supplier_id" json:"supplierId"`
	PurchaseOrderID *id.ID          `db:"purchase_order_id" json:"purchaseOrderId,omitempty"`
	Metadata        ReceiptMetadata `db:"metadata" json:"metadata"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one received product line. Quantity is the billed quantity in the purchase UOM;
// free quantity and everything else lives in Metadata.
type Line struct {
	ID         id.ID           `db:"id" json:"id"`
	ReceiptID  id.ID           `db:"receipt_id" json:"receiptId"`
	LineNo     int             `db:"line_no" json:"lineNo"`
	ProductID  id.ID           `db:"product_id" json:"productId"`
	BatchID    *id.ID          `db:"batch_id" json:"batchId,omitempty"`
	POLineID   *id.ID          `db:"po_line_id" json:"poLineId,omitempty"`
	LocationID *id.ID          `db:"location_id" json:"locationId,omitempty"`
	Quantity   decimal.Decimal `db:"quantity" json:"quantity"`
	UnitCost   decimal.Decimal `db:"unit_cost" json:"unitCost"`
	Metadata   LineMetadata    `db:"metadata" json:"metadata"`
}

// NewGoodsReceipt creates a receipt header for a company.
func NewGoodsReceipt(companyID string, supplierID id.ID, receivedDate time.Time) *GoodsReceipt {
	return &GoodsReceipt{
		Document:   entity.NewDocument(companyID, receivedDate, StatusReceived),
		SupplierID: supplierID,
		Lines:      make([]Line, 0),
	}
}

// Validate implements entity.Validatable.
func (g *GoodsReceipt) Validate(ctx context.Context) error {
	if err := g.Document.Validate(ctx); err != nil {
		return err
	}
	if id.IsNil(g.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	if err := g.Metadata.Validate(); err != nil {
		return err
	}
	for i := range g.Lines {
		if err := g.Lines[i].Metadata.Validate(g.Lines[i].LineNo); err != nil {
			return err
		}
	}
	return nil
}

// Taxable is quantity × unit cost less discount and scheme discount.
func (l *Line) Taxable() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost).Sub(l.Metadata.Discounts())
}

// Summary is a receipt row of the list view.
type Summary struct {
	ID              id.ID           `db:"id" json:"id"`
	Number          string          `db:"number" json:"number"`
	Date            time.Time       `db:"date" json:"date"`
	Status          string          `db:"status" json:"status"`
	SupplierID      id.ID           `db:"supplier_id" json:"supplierId"`
	SupplierName    string          `db:"supplier_name" json:"supplierName"`
	PurchaseOrderID *id.ID          `db:"purchase_order_id" json:"purchaseOrderId,omitempty"`
	Reference       string          `db:"reference" json:"reference,omitempty"`
	LineCount       int             `db:"line_count" json:"lineCount"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"totalAmount"`
}
