package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/documents/goods_receipt"
)

// --- Request DTOs ---

// CreateGoodsReceiptRequest represents a request to record a goods intake.
type CreateGoodsReceiptRequest struct {
	SupplierID      string                    `json:"supplierId"`
	PurchaseOrderID string                    `json:"purchaseOrderId,omitempty"`
	ReceivedDate    string                    `json:"receivedDate,omitempty"`
	Reference       string                    `json:"reference,omitempty"`
	Notes           string                    `json:"notes,omitempty"`
	Attachment      *goods_receipt.Attachment `json:"attachment,omitempty"`
	Items           []GoodsReceiptItemRequest `json:"items"`
}

// GoodsReceiptItemRequest is one intake line.
type GoodsReceiptItemRequest struct {
	ProductID        string           `json:"productId"`
	POLineID         string           `json:"poLineId,omitempty"`
	QtyReceived      decimal.Decimal  `json:"qtyReceived"`
	UnitPrice        *decimal.Decimal `json:"unitPrice,omitempty"`
	LocationID       string           `json:"locationId,omitempty"`
	Batch            string           `json:"batch,omitempty"`
	Expiry           string           `json:"expiry,omitempty"`
	MRP              *decimal.Decimal `json:"mrp,omitempty"`
	SalePrice        *decimal.Decimal `json:"salePrice,omitempty"`
	MarginPct        *decimal.Decimal `json:"marginPct,omitempty"`
	MarkupPct        *decimal.Decimal `json:"markupPct,omitempty"`
	PricingStrategy  string           `json:"pricingStrategy,omitempty"`
	MRPDiscountPct   *decimal.Decimal `json:"mrpDiscountPct,omitempty"`
	TaxID            string           `json:"taxId,omitempty"`
	TaxRate          *decimal.Decimal `json:"taxRate,omitempty"`
	TaxAmount        *decimal.Decimal `json:"taxAmount,omitempty"`
	HSN              string           `json:"hsn,omitempty"`
	Packing          string           `json:"packing,omitempty"`
	PurchaseUOM      string           `json:"purchaseUom,omitempty"`
	BaseUOM          string           `json:"baseUom,omitempty"`
	ConversionFactor *decimal.Decimal `json:"conversionFactor,omitempty"`
	SalePricePerUnit *decimal.Decimal `json:"salePricePerUnit,omitempty"`
	DiscountPct      *decimal.Decimal `json:"discountPct,omitempty"`
	DiscountAmt      *decimal.Decimal `json:"discountAmt,omitempty"`
	SchemeDiscount   *decimal.Decimal `json:"schemeDiscount,omitempty"`
	FreeQty          *decimal.Decimal `json:"freeQty,omitempty"`
}

// ToInput converts the request to the domain input. Malformed ids and dates are
// reported as validation errors naming the offending field (and line, for items).
func (r *CreateGoodsReceiptRequest) ToInput(now time.Time) (goods_receipt.CreateInput, error) {
	in := goods_receipt.CreateInput{
		Reference:  r.Reference,
		Notes:      r.Notes,
		Attachment: r.Attachment,
		Items:      make([]goods_receipt.ItemInput, 0, len(r.Items)),
	}

	if strings.TrimSpace(r.SupplierID) != "" {
		supplierID, err := id.Parse(r.SupplierID)
		if err != nil {
			return in, apperror.NewValidation("invalid supplier id").WithDetail("field", "supplierId")
		}
		in.SupplierID = supplierID
	}

	poID, err := optionalID(r.PurchaseOrderID)
	if err != nil {
		return in, apperror.NewValidation("invalid purchase order id").WithDetail("field", "purchaseOrderId")
	}
	in.PurchaseOrderID = poID

	in.ReceivedDate = now
	if r.ReceivedDate != "" {
		d, err := ParseDate(r.ReceivedDate)
		if err != nil {
			return in, apperror.NewValidation("invalid received date").WithDetail("field", "receivedDate")
		}
		in.ReceivedDate = d
	}

	for i, item := range r.Items {
		it, err := item.toInput(i + 1)
		if err != nil {
			return in, err
		}
		in.Items = append(in.Items, it)
	}
	return in, nil
}

func (r GoodsReceiptItemRequest) toInput(lineNo int) (goods_receipt.ItemInput, error) {
	it := goods_receipt.ItemInput{
		QtyReceived:      r.QtyReceived,
		UnitPrice:        r.UnitPrice,
		Batch:            r.Batch,
		Expiry:           r.Expiry,
		MRP:              r.MRP,
		SalePrice:        r.SalePrice,
		MarginPct:        r.MarginPct,
		MarkupPct:        r.MarkupPct,
		PricingStrategy:  r.PricingStrategy,
		MRPDiscountPct:   r.MRPDiscountPct,
		TaxID:            r.TaxID,
		TaxRate:          r.TaxRate,
		TaxAmount:        r.TaxAmount,
		HSN:              r.HSN,
		Packing:          r.Packing,
		PurchaseUOM:      r.PurchaseUOM,
		BaseUOM:          r.BaseUOM,
		ConversionFactor: r.ConversionFactor,
		SalePricePerUnit: r.SalePricePerUnit,
		DiscountPct:      r.DiscountPct,
		DiscountAmt:      r.DiscountAmt,
		SchemeDiscount:   r.SchemeDiscount,
		FreeQty:          r.FreeQty,
	}

	if strings.TrimSpace(r.ProductID) != "" {
		productID, err := id.Parse(r.ProductID)
		if err != nil {
			return it, apperror.NewLineValidation(lineNo, "productId", "invalid product id")
		}
		it.ProductID = productID
	}

	var err error
	if it.POLineID, err = optionalID(r.POLineID); err != nil {
		return it, apperror.NewLineValidation(lineNo, "poLineId", "invalid purchase order line id")
	}
	if it.LocationID, err = optionalID(r.LocationID); err != nil {
		return it, apperror.NewLineValidation(lineNo, "locationId", "invalid location id")
	}
	return it, nil
}

// UpdateGoodsReceiptRequest rewrites receipt metadata. Absent fields are left unchanged.
type UpdateGoodsReceiptRequest struct {
	Reference        *string                   `json:"reference,omitempty"`
	Notes            *string                   `json:"notes,omitempty"`
	Attachment       *goods_receipt.Attachment `json:"attachment,omitempty"`
	RemoveAttachment bool                      `json:"removeAttachment,omitempty"`
	Lines            []LineMetadataRequest     `json:"lines,omitempty"`
}

// LineMetadataRequest replaces the metadata of one existing line.
type LineMetadataRequest struct {
	LineID   string                     `json:"lineId"`
	Metadata goods_receipt.LineMetadata `json:"metadata"`
}

// ToInput converts the request to the domain input.
func (r *UpdateGoodsReceiptRequest) ToInput() (goods_receipt.UpdateInput, error) {
	in := goods_receipt.UpdateInput{
		Reference:        r.Reference,
		Notes:            r.Notes,
		Attachment:       r.Attachment,
		RemoveAttachment: r.RemoveAttachment,
	}
	for i, l := range r.Lines {
		lineID, err := id.Parse(l.LineID)
		if err != nil {
			return in, apperror.NewLineValidation(i+1, "lineId", "invalid line id")
		}
		in.Lines = append(in.Lines, goods_receipt.LineUpdate{LineID: lineID, Metadata: l.Metadata})
	}
	return in, nil
}

// --- Response DTOs ---

// CreateGoodsReceiptResponse is returned by a successful intake. Warning is set when
// the receipt was stored but the ledger did not accept the invoice yet.
type CreateGoodsReceiptResponse struct {
	Success       bool                        `json:"success"`
	Receipt       *goods_receipt.GoodsReceipt `json:"receipt"`
	InvoiceID     string                      `json:"invoiceId"`
	InvoiceNumber string                      `json:"invoiceNumber,omitempty"`
	Warning       string                      `json:"warning,omitempty"`
}

// FromCreateResult builds the intake response.
func FromCreateResult(res *goods_receipt.CreateResult) CreateGoodsReceiptResponse {
	return CreateGoodsReceiptResponse{
		Success:       true,
		Receipt:       res.Receipt,
		InvoiceID:     res.InvoiceID.String(),
		InvoiceNumber: res.InvoiceNumber,
		Warning:       res.Warning,
	}
}

// --- helpers ---

func optionalID(s string) (*id.ID, error) {
	return id.ParseOptional(strings.TrimSpace(s))
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
