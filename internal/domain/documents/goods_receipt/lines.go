package goods_receipt

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/catalogs/product"
	"backoffice/internal/domain/catalogs/taxrate"
)

// ResolveTax is the single tax resolution used for both the receipt line and the
// invoice line, so the two can never disagree within a call.
//
// Id: the explicit tax id of the item, else the company tax whose rate equals the item rate.
// Rate: the item rate, else the rate registered for the explicit id.
// Amount: the item amount, else taxable × rate / 100 rounded to 2 places.
// Returns nil when the item carries no tax information at all.
func ResolveTax(it *ItemInput, table taxrate.Table) *LineTax {
	taxID := strings.TrimSpace(it.TaxID)
	if taxID == "" && it.TaxRate == nil && it.TaxAmount == nil {
		return nil
	}

	rate := decimal.Zero
	switch {
	case it.TaxRate != nil:
		rate = *it.TaxRate
	case taxID != "":
		if r, ok := table.RateForID(taxID); ok {
			rate = r
		}
	}

	if taxID == "" && it.TaxRate != nil {
		if found, ok := table.IDForRate(rate); ok {
			taxID = found
		}
	}

	amount := types.RoundMoney(types.PercentOf(it.Taxable(), rate))
	if it.TaxAmount != nil {
		amount = *it.TaxAmount
	}

	return &LineTax{ID: taxID, Rate: rate, Amount: amount}
}

// resolveLineTax re-runs id resolution on stored line metadata, used by updates.
// An id registered for a different rate than the line's is stale and is re-resolved.
func resolveLineTax(line *Line, table taxrate.Table) {
	tax := line.Metadata.Tax
	if tax == nil {
		return
	}
	if r, ok := table.RateForID(tax.ID); ok && !r.Equal(tax.Rate) {
		tax.ID = ""
	}
	if tax.ID == "" {
		if found, ok := table.IDForRate(tax.Rate); ok {
			tax.ID = found
		}
	}
	if tax.Amount.IsZero() && tax.Rate.IsPositive() {
		tax.Amount = types.RoundMoney(types.PercentOf(line.Taxable(), tax.Rate))
	}
}

// LineBuilder assembles persisted lines for one receipt.
type LineBuilder struct {
	catalog         CatalogRepository
	companyID       string
	receiptID       id.ID
	defaultLocation *id.ID
}

// NewLineBuilder creates a builder for a receipt.
func NewLineBuilder(catalog CatalogRepository, companyID string, receiptID id.ID) *LineBuilder {
	return &LineBuilder{catalog: catalog, companyID: companyID, receiptID: receiptID}
}

// locationFor returns the item's location or the company default, created at most once per call.
func (b *LineBuilder) locationFor(ctx context.Context, it *ItemInput) (*id.ID, error) {
	if it.LocationID != nil {
		return it.LocationID, nil
	}
	if b.defaultLocation == nil {
		loc, err := b.catalog.EnsureDefaultLocation(ctx, b.companyID)
		if err != nil {
			return nil, fmt.Errorf("ensure default location: %w", err)
		}
		locID := loc.ID
		b.defaultLocation = &locID
	}
	return b.defaultLocation, nil
}

// Build creates the line for item lineNo (1-based).
func (b *LineBuilder) Build(ctx context.Context, lineNo int, it *ItemInput, batch *product.Batch, costing Costing, tax *LineTax) (Line, error) {
	locationID, err := b.locationFor(ctx, it)
	if err != nil {
		return Line{}, err
	}

	line := Line{
		ID:         id.New(),
		ReceiptID:  b.receiptID,
		LineNo:     lineNo,
		ProductID:  it.ProductID,
		POLineID:   it.POLineID,
		LocationID: locationID,
		Quantity:   it.QtyReceived,
		UnitCost:   it.UnitCost(),
		Metadata:   lineMetadataFor(it, costing, tax),
	}
	if batch != nil {
		batchID := batch.ID
		line.BatchID = &batchID
	}
	if err := line.Metadata.Validate(lineNo); err != nil {
		return Line{}, err
	}
	return line, nil
}

func lineMetadataFor(it *ItemInput, c Costing, tax *LineTax) LineMetadata {
	md := LineMetadata{
		BatchNo:          strings.TrimSpace(it.Batch),
		Expiry:           FormatExpiry(ParseExpiry(it.Expiry)),
		MRP:              it.MRP,
		SalePrice:        it.SalePrice,
		MarginPct:        it.MarginPct,
		MarkupPct:        it.MarkupPct,
		PricingStrategy:  it.PricingStrategy,
		MRPDiscountPct:   it.MRPDiscountPct,
		Tax:              tax,
		HSN:              it.HSN,
		Packing:          it.Packing,
		PurchaseUOM:      it.PurchaseUOM,
		BaseUOM:          it.BaseUOM,
		ConversionFactor: it.ConversionFactor,
		SalePricePerUnit: it.SalePricePerUnit,
		DiscountPct:      it.DiscountPct,
		DiscountAmt:      it.DiscountAmt,
		SchemeDiscount:   it.SchemeDiscount,
		FreeQty:          it.FreeQty,
		EffectiveFactor:  types.Ptr(c.EffectiveFactor),
		BaseQty:          types.Ptr(c.BaseQty),
		AvgCostPerBase:   types.Ptr(c.AvgCostPerBase),
	}
	if md.SalePricePerUnit == nil {
		md.SalePricePerUnit = types.Ptr(c.SalePricePerBase)
	}
	return md
}

// missingProduct is returned inside the transaction when a line references an unknown product.
func missingProduct(lineNo int, productID id.ID) error {
	return apperror.NewNotFound("product", productID.String()).WithDetail("lineNo", lineNo)
}
