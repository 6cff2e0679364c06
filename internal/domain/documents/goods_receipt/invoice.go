package goods_receipt

import (
	"strings"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/documents/purchase_invoice"
)

// InvoiceOrigin marks invoices derived from goods receipts.
const InvoiceOrigin = "goods_receipt"

// InvoiceNumber is the supplier reference when present, else the receipt number
// with the receipt prefix swapped for the invoice prefix.
func InvoiceNumber(reference, receiptNumber, receiptPrefix, invoicePrefix string) string {
	if ref := strings.TrimSpace(reference); ref != "" {
		return ref
	}
	if strings.HasPrefix(receiptNumber, receiptPrefix+"-") {
		return invoicePrefix + strings.TrimPrefix(receiptNumber, receiptPrefix)
	}
	return invoicePrefix + "-" + receiptNumber
}

// DeriveInvoice builds the purchase invoice of a persisted receipt. Lines must carry the
// tax resolved by ResolveTax; the invoice reuses it unchanged.
func DeriveInvoice(receipt *GoodsReceipt, number string) *purchase_invoice.Invoice {
	inv := &purchase_invoice.Invoice{
		Document:        entity.NewDocument(receipt.CompanyID, receipt.Date, purchase_invoice.StatusUnposted),
		SupplierID:      receipt.SupplierID,
		ReceiptID:       receipt.ID,
		PurchaseOrderID: receipt.PurchaseOrderID,
		Metadata: purchase_invoice.Metadata{
			SourceReceiptID:     receipt.ID.String(),
			SourceReceiptNumber: receipt.Number,
			Origin:              InvoiceOrigin,
		},
		Lines: make([]purchase_invoice.Line, 0, len(receipt.Lines)),
	}
	inv.Number = number
	inv.CreatedBy = receipt.CreatedBy

	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	for i := range receipt.Lines {
		rl := &receipt.Lines[i]
		taxable := types.RoundMoney(rl.Taxable())

		line := purchase_invoice.Line{
			ID:             id.New(),
			InvoiceID:      inv.ID,
			LineNo:         rl.LineNo,
			ProductID:      rl.ProductID,
			Description:    purchase_invoice.DerivedLineDescription,
			Quantity:       rl.Quantity,
			UnitPrice:      rl.UnitCost,
			DiscountAmount: rl.Metadata.Discounts(),
			TaxableAmount:  taxable,
			TaxRate:        decimal.Zero,
			TaxAmount:      decimal.Zero,
		}
		if tax := rl.Metadata.Tax; tax != nil {
			line.TaxRate = tax.Rate
			line.TaxAmount = tax.Amount
			if tax.ID != "" {
				taxID := tax.ID
				line.TaxID = &taxID
			}
		}
		line.LineTotal = line.TaxableAmount.Add(line.TaxAmount)

		subtotal = subtotal.Add(line.TaxableAmount)
		taxTotal = taxTotal.Add(line.TaxAmount)
		inv.Lines = append(inv.Lines, line)
	}

	inv.Subtotal = subtotal
	inv.TaxTotal = taxTotal
	inv.TotalAmount = subtotal.Add(taxTotal)
	return inv
}
