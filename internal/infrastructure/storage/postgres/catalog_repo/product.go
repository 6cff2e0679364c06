package catalog_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/catalogs/product"
	"backoffice/internal/domain/catalogs/taxrate"
	"backoffice/internal/domain/catalogs/warehouse"
	"backoffice/internal/domain/documents/goods_receipt"
	"backoffice/internal/infrastructure/storage/postgres"
)

var (
	productCols = []string{
		"id", "company_id", "name", "sku",
		"COALESCE(price, 0) AS price",
		"COALESCE(cost, 0) AS cost",
		"COALESCE(metadata, '{}'::jsonb) AS metadata",
		"updated_at",
	}
	batchCols = postgres.ExtractDBColumns[product.Batch]()
)

// ProductRepo implements goods_receipt.CatalogRepository.
type ProductRepo struct {
	baseRepo
}

var _ goods_receipt.CatalogRepository = (*ProductRepo)(nil)

// NewProductRepo creates a new product catalog repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{baseRepo: baseRepo{txm: txm}}
}

// GetProductsByIDs returns the company products among ids. Unknown ids are skipped.
func (r *ProductRepo) GetProductsByIDs(ctx context.Context, companyID string, ids []id.ID) ([]*product.Product, error) {
	products := make([]*product.Product, 0, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	sql, args, err := r.Builder().
		Select(productCols...).
		From(productsTable).
		Where(squirrel.Eq{"company_id": companyID, "id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return products, nil
}

// FindBatches returns batches matching any product in productIDs and any number in batchNos.
// Pairs outside the requested combinations may be returned; callers key by product and batch.
func (r *ProductRepo) FindBatches(ctx context.Context, companyID string, productIDs []id.ID, batchNos []string) ([]*product.Batch, error) {
	batches := make([]*product.Batch, 0)
	if len(productIDs) == 0 || len(batchNos) == 0 {
		return batches, nil
	}

	sql, args, err := r.Builder().
		Select(batchCols...).
		From(productBatchesTable).
		Where(squirrel.Eq{"company_id": companyID, "product_id": productIDs, "batch_no": batchNos}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &batches, sql, args...); err != nil {
		return nil, fmt.Errorf("find batches: %w", err)
	}
	return batches, nil
}

// ListTaxRates returns the company's rate to tax id mapping.
func (r *ProductRepo) ListTaxRates(ctx context.Context, companyID string) (taxrate.Table, error) {
	sql, args, err := r.Builder().
		Select("id", "company_id", "name", "rate").
		From(taxRatesTable).
		Where(squirrel.Eq{"company_id": companyID}).
		OrderBy("rate", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rates taxrate.Table
	if err := pgxscan.Select(ctx, r.querier(ctx), &rates, sql, args...); err != nil {
		return nil, fmt.Errorf("list tax rates: %w", err)
	}
	return rates, nil
}

// UpsertBatch inserts b, or returns the row already holding (company_id, product_id, batch_no).
func (r *ProductRepo) UpsertBatch(ctx context.Context, b *product.Batch) (*product.Batch, error) {
	sql, args, err := r.upsertBatchQuery(b).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build upsert: %w", err)
	}

	var saved product.Batch
	if err := pgxscan.Get(ctx, r.querier(ctx), &saved, sql, args...); err != nil {
		return nil, fmt.Errorf("upsert batch: %w", postgres.MapReferenceError(err))
	}
	return &saved, nil
}

// upsertBatchQuery uses a no-op DO UPDATE so RETURNING yields the existing row on conflict.
func (r *ProductRepo) upsertBatchQuery(b *product.Batch) squirrel.InsertBuilder {
	data := postgres.StructToMap(b)
	values := make([]any, len(batchCols))
	for i, col := range batchCols {
		values[i] = data[col]
	}

	return r.Builder().
		Insert(productBatchesTable).
		Columns(batchCols...).
		Values(values...).
		Suffix("ON CONFLICT (company_id, product_id, batch_no) DO UPDATE SET batch_no = EXCLUDED.batch_no").
		Suffix("RETURNING " + strings.Join(batchCols, ", "))
}

// AddBatchStock adds qty to the batch's on-hand quantity.
func (r *ProductRepo) AddBatchStock(ctx context.Context, batchID id.ID, qty decimal.Decimal) error {
	sql, args, err := r.Builder().
		Update(productBatchesTable).
		Set("on_hand_qty", squirrel.Expr("COALESCE(on_hand_qty, 0) + ?", qty)).
		Where(squirrel.Eq{"id": batchID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("add batch stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("batch", batchID.String())
	}
	return nil
}

// EnsureDefaultLocation returns the company's default location, creating it on first use.
// Concurrent first uses converge on one row through the (company_id, name) unique key.
func (r *ProductRepo) EnsureDefaultLocation(ctx context.Context, companyID string) (*warehouse.Location, error) {
	cols := []string{"id", "company_id", "name", "is_default", "created_at"}
	querier := r.querier(ctx)

	sql, args, err := r.Builder().
		Select(cols...).
		From(stockLocationsTable).
		Where(squirrel.Eq{"company_id": companyID, "is_default": true}).
		OrderBy("created_at").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var loc warehouse.Location
	err = pgxscan.Get(ctx, querier, &loc, sql, args...)
	if err == nil {
		return &loc, nil
	}
	if !pgxscan.NotFound(err) {
		return nil, fmt.Errorf("get default location: %w", err)
	}

	fresh := warehouse.NewDefaultLocation(companyID)
	sql, args, err = r.Builder().
		Insert(stockLocationsTable).
		Columns(cols...).
		Values(fresh.ID, fresh.CompanyID, fresh.Name, fresh.IsDefault, fresh.CreatedAt).
		Suffix("ON CONFLICT (company_id, name) DO UPDATE SET is_default = true").
		Suffix("RETURNING " + strings.Join(cols, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}
	if err := pgxscan.Get(ctx, querier, &loc, sql, args...); err != nil {
		return nil, fmt.Errorf("create default location: %w", err)
	}
	return &loc, nil
}

// UpdateProductMaster writes price and cost when set and merges metadata at the top level,
// so keys the update does not carry are kept.
func (r *ProductRepo) UpdateProductMaster(ctx context.Context, companyID string, upd product.MasterUpdate) error {
	sql, args, err := r.masterUpdateQuery(companyID, upd).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product master: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", upd.ProductID.String())
	}
	return nil
}

func (r *ProductRepo) masterUpdateQuery(companyID string, upd product.MasterUpdate) squirrel.UpdateBuilder {
	q := r.Builder().
		Update(productsTable).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": upd.ProductID, "company_id": companyID})
	if upd.Price != nil {
		q = q.Set("price", *upd.Price)
	}
	if upd.Cost != nil {
		q = q.Set("cost", *upd.Cost)
	}
	if !upd.Metadata.IsEmpty() {
		q = q.Set("metadata", squirrel.Expr("COALESCE(metadata, '{}'::jsonb) || ?::jsonb", upd.Metadata))
	}
	return q
}
