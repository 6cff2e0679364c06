// Package product provides the product master and its per-batch records.
package product

import (
	"database/sql/driver"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/entity"
	"backoffice/internal/core/id"
)

// Product is the product master row as seen by goods intake.
type Product struct {
	ID        id.ID           `db:"id" json:"id"`
	CompanyID string          `db:"company_id" json:"companyId"`
	Name      string          `db:"name" json:"name"`
	SKU       *string         `db:"sku" json:"sku,omitempty"`
	Price     decimal.Decimal `db:"price" json:"price"`
	Cost      decimal.Decimal `db:"cost" json:"cost"`
	Metadata  Metadata        `db:"metadata" json:"metadata"`
	UpdatedAt time.Time       `db:"updated_at" json:"updatedAt"`
}

// UOMPricing is the pack/base pricing snapshot taken from the latest receipt.
type UOMPricing struct {
	BaseUOM          string          `json:"base_uom,omitempty"`
	BasePrice        decimal.Decimal `json:"base_price"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
	PackUOM          string          `json:"pack_uom,omitempty"`
	PackPrice        decimal.Decimal `json:"pack_price"`
}

// Metadata is the product's JSONB bag. Only keys owned by goods intake are modelled;
// updates are merged at the top level so keys written by other modules survive.
type Metadata struct {
	LastPurchaseTaxID   *string          `json:"last_purchase_tax_id,omitempty"`
	LastPurchaseTaxRate *decimal.Decimal `json:"last_purchase_tax_rate,omitempty"`
	UOMPricing          *UOMPricing      `json:"uom_pricing,omitempty"`
}

// Scan implements sql.Scanner.
func (m *Metadata) Scan(src any) error {
	return entity.ScanJSONB(src, m)
}

// Value implements driver.Valuer.
func (m Metadata) Value() (driver.Value, error) {
	return entity.JSONBValue(m)
}

// IsEmpty reports whether the patch carries nothing to merge.
func (m Metadata) IsEmpty() bool {
	return m.LastPurchaseTaxID == nil && m.LastPurchaseTaxRate == nil && m.UOMPricing == nil
}

// Merge overlays non-nil keys of patch onto m.
func (m Metadata) Merge(patch Metadata) Metadata {
	if patch.LastPurchaseTaxID != nil {
		m.LastPurchaseTaxID = patch.LastPurchaseTaxID
	}
	if patch.LastPurchaseTaxRate != nil {
		m.LastPurchaseTaxRate = patch.LastPurchaseTaxRate
	}
	if patch.UOMPricing != nil {
		m.UOMPricing = patch.UOMPricing
	}
	return m
}

// MasterUpdate is the write produced for one product by a receipt.
// Nil Price or Cost leaves the stored column unchanged.
type MasterUpdate struct {
	ProductID id.ID
	Price     *decimal.Decimal
	Cost      *decimal.Decimal
	Metadata  Metadata
}
