package goods_receipt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/id"
	"backoffice/internal/domain/catalogs/product"
)

// BatchResolver finds or creates the batch of each line within one intake call.
// New batches are added to the shared map so later lines of the same call reuse them.
// Across calls the store's unique key (company, product, batch_no) decides.
type BatchResolver struct {
	catalog   CatalogRepository
	companyID string
	batches   map[string]*product.Batch
}

// NewBatchResolver wraps the pre-fetched batch map of an intake.
func NewBatchResolver(catalog CatalogRepository, companyID string, batches map[string]*product.Batch) *BatchResolver {
	if batches == nil {
		batches = make(map[string]*product.Batch)
	}
	return &BatchResolver{catalog: catalog, companyID: companyID, batches: batches}
}

// Resolve returns the batch of the item, or nil when the item has no batch number.
func (r *BatchResolver) Resolve(ctx context.Context, it *ItemInput) (*product.Batch, error) {
	batchNo := strings.TrimSpace(it.Batch)
	if batchNo == "" {
		return nil, nil
	}

	key := product.BatchKey(it.ProductID, batchNo)
	if b, ok := r.batches[key]; ok {
		return b, nil
	}

	b := product.NewBatch(r.companyID, it.ProductID, batchNo)
	b.Cost = it.UnitCost()
	if it.MRP != nil {
		b.MRP = *it.MRP
	}
	if it.SalePrice != nil {
		b.SalePrice = *it.SalePrice
	}
	b.MarginPct = it.MarginPct
	b.MarkupPct = it.MarkupPct
	if it.PricingStrategy != "" {
		s := it.PricingStrategy
		b.PricingStrategy = &s
	}
	b.ExpiryDate = ParseExpiry(it.Expiry)

	saved, err := r.catalog.UpsertBatch(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("upsert batch %s of product %s: %w", batchNo, it.ProductID, err)
	}
	r.batches[key] = saved
	return saved, nil
}

// AddStock books base-unit quantity onto the batch.
func (r *BatchResolver) AddStock(ctx context.Context, batchID id.ID, qty decimal.Decimal) error {
	if !qty.IsPositive() {
		return nil
	}
	if err := r.catalog.AddBatchStock(ctx, batchID, qty); err != nil {
		return fmt.Errorf("add stock to batch %s: %w", batchID, err)
	}
	return nil
}

var expiryLayouts = []struct {
	layout   string
	monthEnd bool
}{
	{"2006-01-02", false},
	{time.RFC3339, false},
	{"02/01/2006", false},
	{"2006-01", true},
	{"01/2006", true},
	{"01/06", true},
}

// ParseExpiry parses the supported expiry formats. Month-only forms mean the last day of
// that month. Anything unparseable, including impossible dates, is treated as no expiry.
func ParseExpiry(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, l := range expiryLayouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		if l.monthEnd {
			t = t.AddDate(0, 1, -1)
		}
		return &t
	}
	return nil
}

// FormatExpiry renders a parsed expiry for line metadata.
func FormatExpiry(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
