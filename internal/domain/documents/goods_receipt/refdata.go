package goods_receipt

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"backoffice/internal/core/id"
	"backoffice/internal/domain/catalogs/product"
	"backoffice/internal/domain/catalogs/taxrate"
)

// ReferenceData is everything intake looks up per line, fetched up front.
type ReferenceData struct {
	Products map[id.ID]*product.Product
	// Batches is keyed by product.BatchKey.
	Batches  map[string]*product.Batch
	TaxRates taxrate.Table
}

// ReferenceLoader fetches products, existing batches and tax rates for an intake
// with three concurrent reads instead of one query per line.
type ReferenceLoader struct {
	catalog CatalogRepository
}

// NewReferenceLoader creates a loader.
func NewReferenceLoader(catalog CatalogRepository) *ReferenceLoader {
	return &ReferenceLoader{catalog: catalog}
}

// Load must not run on a transaction connection: the three reads share ctx concurrently.
func (l *ReferenceLoader) Load(ctx context.Context, companyID string, items []ItemInput) (*ReferenceData, error) {
	productIDs, batchNos := referencedKeys(items)

	var (
		products []*product.Product
		batches  []*product.Batch
		rates    taxrate.Table
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = l.catalog.GetProductsByIDs(gctx, companyID, productIDs)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if len(batchNos) == 0 {
			return nil
		}
		var err error
		batches, err = l.catalog.FindBatches(gctx, companyID, productIDs, batchNos)
		if err != nil {
			return fmt.Errorf("load batches: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rates, err = l.catalog.ListTaxRates(gctx, companyID)
		if err != nil {
			return fmt.Errorf("load tax rates: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ref := &ReferenceData{
		Products: make(map[id.ID]*product.Product, len(products)),
		Batches:  make(map[string]*product.Batch, len(batches)),
		TaxRates: rates,
	}
	for _, p := range products {
		ref.Products[p.ID] = p
	}
	for _, b := range batches {
		ref.Batches[b.Key()] = b
	}
	return ref, nil
}

// referencedKeys returns distinct product ids and non-empty batch numbers in first-seen order.
func referencedKeys(items []ItemInput) ([]id.ID, []string) {
	seenProducts := make(map[id.ID]bool, len(items))
	seenBatches := make(map[string]bool, len(items))
	var productIDs []id.ID
	var batchNos []string
	for i := range items {
		if pid := items[i].ProductID; !seenProducts[pid] {
			seenProducts[pid] = true
			productIDs = append(productIDs, pid)
		}
		if b := strings.TrimSpace(items[i].Batch); b != "" && !seenBatches[b] {
			seenBatches[b] = true
			batchNos = append(batchNos, b)
		}
	}
	return productIDs, batchNos
}
