package product

import (
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/id"
)

// Batch is a lot of a product sharing cost, MRP and expiry.
// (CompanyID, ProductID, BatchNo) is unique.
type Batch struct {
	ID              id.ID            `db:"id" json:"id"`
	CompanyID       string           `db:"company_id" json:"companyId"`
	ProductID       id.ID            `db:"product_id" json:"productId"`
	BatchNo         string           `db:"batch_no" json:"batchNo"`
	Cost            decimal.Decimal  `db:"cost" json:"cost"`
	MRP             decimal.Decimal  `db:"mrp" json:"mrp"`
	SalePrice       decimal.Decimal  `db:"sale_price" json:"salePrice"`
	MarginPct       *decimal.Decimal `db:"margin_pct" json:"marginPct,omitempty"`
	MarkupPct       *decimal.Decimal `db:"markup_pct" json:"markupPct,omitempty"`
	PricingStrategy *string          `db:"pricing_strategy" json:"pricingStrategy,omitempty"`
	ExpiryDate      *time.Time       `db:"expiry_date" json:"expiryDate,omitempty"`
	OnHandQty       decimal.Decimal  `db:"on_hand_qty" json:"onHandQty"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
}

// BatchKey is the in-memory lookup key "productId|batchNo".
func BatchKey(productID id.ID, batchNo string) string {
	return productID.String() + "|" + batchNo
}

// Key returns the lookup key of b.
func (b *Batch) Key() string {
	return BatchKey(b.ProductID, b.BatchNo)
}

// NewBatch creates a batch with a fresh id and zero stock.
func NewBatch(companyID string, productID id.ID, batchNo string) *Batch {
	return &Batch{
		ID:        id.New(),
		CompanyID: companyID,
		ProductID: productID,
		BatchNo:   batchNo,
		Cost:      decimal.Zero,
		MRP:       decimal.Zero,
		SalePrice: decimal.Zero,
		OnHandQty: decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}
}
