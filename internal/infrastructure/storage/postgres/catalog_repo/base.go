// Package catalog_repo provides PostgreSQL implementations for catalog repositories:
// products, batches, stock locations and tax rates.
package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"backoffice/internal/infrastructure/storage/postgres"
)

const (
	productsTable       = "products"
	productBatchesTable = "product_batches"
	stockLocationsTable = "stock_locations"
	taxRatesTable       = "tax_rates"
)

// baseRepo carries the transaction manager shared by catalog repositories.
type baseRepo struct {
	txm *postgres.TxManager
}

// Builder returns a new squirrel builder with PostgreSQL placeholder format.
func (r baseRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// querier returns the transaction in ctx, or the pool outside a transaction.
func (r baseRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}
