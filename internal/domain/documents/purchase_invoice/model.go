// Package purchase_invoice provides the supplier invoice derived from a goods receipt.
// It is the unit the ledger posts against.
package purchase_invoice

import (
	"context"
	"database/sql/driver"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
)

const (
	StatusUnposted = "unposted"
	StatusPosted   = "posted"

	// DerivedLineDescription tags lines synthesized from a goods receipt.
	DerivedLineDescription = "Auto-generated from goods receipt"
)

// Metadata back-references the originating receipt.
type Metadata struct {
	SourceReceiptID     string `json:"source_receipt_id"`
	SourceReceiptNumber string `json:"source_receipt_number"`
	Origin              string `json:"origin"`
}

// Scan implements sql.Scanner.
func (m *Metadata) Scan(src any) error {
	return entity.ScanJSONB(src, m)
}

// Value implements driver.Valuer.
func (m Metadata) Value() (driver.Value, error) {
	return entity.JSONBValue(m)
}

// Invoice is a purchase invoice header.
type Invoice struct {
	entity.Document

	SupplierID      id.ID           `db:"supplier_id" json:"supplierId"`
	ReceiptID       id.ID           `db:"receipt_id" json:"receiptId"`
	PurchaseOrderID *id.ID          `db:"purchase_order_id" json:"purchaseOrderId,omitempty"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	TaxTotal        decimal.Decimal `db:"tax_total" json:"taxTotal"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"totalAmount"`
	Metadata        Metadata        `db:"metadata" json:"metadata"`

	Lines []Line `db:"-" json:"lines"`
}

// Line is one invoice line.
type Line struct {
	ID             id.ID           `db:"id" json:"id"`
	InvoiceID      id.ID           `db:"invoice_id" json:"invoiceId"`
	LineNo         int             `db:"line_no" json:"lineNo"`
	ProductID      id.ID           `db:"product_id" json:"productId"`
	Description    string          `db:"description" json:"description"`
	Quantity       decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice      decimal.Decimal `db:"unit_price" json:"unitPrice"`
	DiscountAmount decimal.Decimal `db:"discount_amount" json:"discountAmount"`
	TaxableAmount  decimal.Decimal `db:"taxable_amount" json:"taxableAmount"`
	TaxID          *string         `db:"tax_id" json:"taxId,omitempty"`
	TaxRate        decimal.Decimal `db:"tax_rate" json:"taxRate"`
	TaxAmount      decimal.Decimal `db:"tax_amount" json:"taxAmount"`
	LineTotal      decimal.Decimal `db:"line_total" json:"lineTotal"`
}

// Validate implements entity.Validatable.
func (inv *Invoice) Validate(ctx context.Context) error {
	if err := inv.Document.Validate(ctx); err != nil {
		return err
	}
	if inv.Number == "" {
		return apperror.NewValidation("invoice number is required").WithDetail("field", "number")
	}
	if len(inv.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").WithDetail("field", "lines")
	}
	if !inv.Subtotal.Add(inv.TaxTotal).Equal(inv.TotalAmount) {
		return apperror.NewValidation("invoice total does not equal subtotal plus tax").
			WithDetail("subtotal", inv.Subtotal.String()).
			WithDetail("taxTotal", inv.TaxTotal.String()).
			WithDetail("totalAmount", inv.TotalAmount.String())
	}
	return nil
}
