package goods_receipt

import (
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
)

// CreateInput is one goods intake call. Company and actor come from the caller context.
type CreateInput struct {
	SupplierID      id.ID
	PurchaseOrderID *id.ID
	ReceivedDate    time.Time
	Reference       string
	Notes           string
	Attachment      *Attachment
	Items           []ItemInput
}

// ItemInput is one intake line as supplied by the caller.
type ItemInput struct {
	ProductID        id.ID
	POLineID         *id.ID
	QtyReceived      decimal.Decimal
	UnitPrice        *decimal.Decimal
	LocationID       *id.ID
	Batch            string
	Expiry           string
	MRP              *decimal.Decimal
	SalePrice        *decimal.Decimal
	MarginPct        *decimal.Decimal
	MarkupPct        *decimal.Decimal
	PricingStrategy  string
	MRPDiscountPct   *decimal.Decimal
	TaxID            string
	TaxRate          *decimal.Decimal
	TaxAmount        *decimal.Decimal
	HSN              string
	Packing          string
	PurchaseUOM      string
	BaseUOM          string
	ConversionFactor *decimal.Decimal
	SalePricePerUnit *decimal.Decimal
	DiscountPct      *decimal.Decimal
	DiscountAmt      *decimal.Decimal
	SchemeDiscount   *decimal.Decimal
	FreeQty          *decimal.Decimal
}

// UnitCost returns the unit price, or zero when absent.
func (it *ItemInput) UnitCost() decimal.Decimal {
	return types.OrZero(it.UnitPrice)
}

// Free returns the free quantity, or zero when absent.
func (it *ItemInput) Free() decimal.Decimal {
	return types.OrZero(it.FreeQty)
}

// Factor returns the declared conversion factor, defaulting to 1.
func (it *ItemInput) Factor() decimal.Decimal {
	return types.Or(it.ConversionFactor, types.One())
}

// Discounts is discount amount plus scheme discount.
func (it *ItemInput) Discounts() decimal.Decimal {
	return types.OrZero(it.DiscountAmt).Add(types.OrZero(it.SchemeDiscount))
}

// Taxable is (quantity × unit cost) − (discount amount + scheme discount).
func (it *ItemInput) Taxable() decimal.Decimal {
	return it.QtyReceived.Mul(it.UnitCost()).Sub(it.Discounts())
}

// Validate checks the request shape: supplier, at least one item, product ids and quantities.
// Pricing rules are checked separately by ValidatePricing.
func (in *CreateInput) Validate() error {
	if id.IsNil(in.SupplierID) {
		return apperror.NewValidation("supplier is required").WithDetail("field", "supplierId")
	}
	if len(in.Items) == 0 {
		return apperror.NewValidation("at least one item is required").WithDetail("field", "items")
	}
	for i := range in.Items {
		it := &in.Items[i]
		lineNo := i + 1
		if id.IsNil(it.ProductID) {
			return apperror.NewLineValidation(lineNo, "productId", "product is required")
		}
		if it.QtyReceived.IsNegative() {
			return apperror.NewLineValidation(lineNo, "qtyReceived", "quantity cannot be negative")
		}
		if !it.QtyReceived.Add(it.Free()).IsPositive() {
			return apperror.NewLineValidation(lineNo, "qtyReceived", "received plus free quantity must be greater than 0")
		}
		if it.UnitPrice != nil && it.UnitPrice.IsNegative() {
			return apperror.NewLineValidation(lineNo, "unitPrice", "unit price cannot be negative")
		}
		if it.ConversionFactor != nil && !it.ConversionFactor.IsPositive() {
			return apperror.NewLineValidation(lineNo, "conversionFactor", "conversion factor must be greater than 0")
		}
	}
	return nil
}

// UpdateInput rewrites header metadata and, optionally, the metadata of individual lines.
// Nil header fields are left unchanged.
type UpdateInput struct {
	Reference        *string
	Notes            *string
	Attachment       *Attachment
	RemoveAttachment bool
	Lines            []LineUpdate
}

// LineUpdate replaces the metadata bag of one existing line.
type LineUpdate struct {
	LineID   id.ID
	Metadata LineMetadata
}
