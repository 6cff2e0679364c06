package goods_receipt

import (
	"github.com/shopspring/decimal"

	"backoffice/internal/core/id"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/catalogs/product"
)

// ProductUpdater collects product master writes over the lines of one intake.
// For a product touched by several lines the last qualifying line wins.
type ProductUpdater struct {
	order   []id.ID
	updates map[id.ID]product.MasterUpdate
}

// NewProductUpdater creates an empty collector.
func NewProductUpdater() *ProductUpdater {
	return &ProductUpdater{updates: make(map[id.ID]product.MasterUpdate)}
}

// Observe records the master write implied by one line. Lines carrying neither a tax
// rate nor a sale price leave the product alone.
func (u *ProductUpdater) Observe(it *ItemInput, previous *product.Product, c Costing, tax *LineTax) {
	hasRate := tax != nil && (it.TaxRate != nil || tax.Rate.IsPositive())
	hasSale := it.SalePrice != nil
	if !hasRate && !hasSale {
		return
	}

	upd := product.MasterUpdate{
		ProductID: it.ProductID,
		Cost:      types.Ptr(c.AvgCostPerBase),
	}

	switch {
	case hasSale:
		upd.Price = types.Ptr(c.SalePricePerBase)
	case previous != nil:
		upd.Price = types.Ptr(previous.Price)
	}

	if hasRate {
		rate := tax.Rate
		upd.Metadata.LastPurchaseTaxRate = &rate
		if tax.ID != "" {
			taxID := tax.ID
			upd.Metadata.LastPurchaseTaxID = &taxID
		}
	}
	if hasSale {
		upd.Metadata.UOMPricing = &product.UOMPricing{
			BaseUOM:          it.BaseUOM,
			BasePrice:        c.SalePricePerBase,
			ConversionFactor: c.EffectiveFactor,
			PackUOM:          it.PurchaseUOM,
			PackPrice:        *it.SalePrice,
		}
	}

	if _, seen := u.updates[it.ProductID]; !seen {
		u.order = append(u.order, it.ProductID)
	}
	u.updates[it.ProductID] = upd
}

// Updates returns one write per product in first-seen order.
func (u *ProductUpdater) Updates() []product.MasterUpdate {
	out := make([]product.MasterUpdate, 0, len(u.order))
	for _, pid := range u.order {
		out = append(out, u.updates[pid])
	}
	return out
}

// taxPatch is the product metadata written when only the tax of a line changes.
func taxPatch(tax *LineTax) (product.Metadata, bool) {
	if tax == nil || (tax.ID == "" && tax.Rate.Equal(decimal.Zero)) {
		return product.Metadata{}, false
	}
	rate := tax.Rate
	patch := product.Metadata{LastPurchaseTaxRate: &rate}
	if tax.ID != "" {
		taxID := tax.ID
		patch.LastPurchaseTaxID = &taxID
	}
	return patch, true
}
