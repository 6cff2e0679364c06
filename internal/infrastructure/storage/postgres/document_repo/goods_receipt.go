package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain"
	"backoffice/internal/domain/documents/goods_receipt"
	"backoffice/internal/infrastructure/storage/postgres"
)

const (
	goodsReceiptsTable     = "goods_receipts"
	goodsReceiptLinesTable = "goods_receipt_lines"
)

var goodsReceiptLineCols = []string{
	"id", "receipt_id", "line_no", "product_id", "batch_id", "po_line_id", "location_id",
	"quantity", "unit_cost", "metadata",
}

// lineTotalExpr is a line's value: quantity × unit cost plus its tax amount.
// The tax amount is read from the nested tax object, falling back to the flat legacy key.
const lineTotalExpr = `COALESCE(l.quantity, 0) * COALESCE(l.unit_cost, 0)
	+ COALESCE((l.metadata->'tax'->>'amount')::numeric, (l.metadata->>'tax_amount')::numeric, 0)`

// GoodsReceiptRepo implements goods_receipt.Repository.
type GoodsReceiptRepo struct {
	*BaseDocumentRepo[*goods_receipt.GoodsReceipt]
}

var _ goods_receipt.Repository = (*GoodsReceiptRepo)(nil)

// NewGoodsReceiptRepo creates a new goods receipt repository.
func NewGoodsReceiptRepo(txm *postgres.TxManager) *GoodsReceiptRepo {
	return &GoodsReceiptRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			goodsReceiptsTable,
			postgres.ExtractDBColumns[goods_receipt.GoodsReceipt](),
			func() *goods_receipt.GoodsReceipt { return &goods_receipt.GoodsReceipt{} },
		),
	}
}

// GetByID returns the receipt header of a company.
func (r *GoodsReceiptRepo) GetByID(ctx context.Context, companyID string, docID id.ID) (*goods_receipt.GoodsReceipt, error) {
	return r.getWhere(ctx, squirrel.Eq{"id": docID, "company_id": companyID}, docID.String())
}

// CreateLines inserts all lines in one statement.
func (r *GoodsReceiptRepo) CreateLines(ctx context.Context, lines []goods_receipt.Line) error {
	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(goodsReceiptLinesTable).
		Columns(goodsReceiptLineCols...)
	for _, l := range lines {
		q = q.Values(
			l.ID, l.ReceiptID, l.LineNo, l.ProductID, l.BatchID, l.POLineID, l.LocationID,
			l.Quantity, l.UnitCost, l.Metadata,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", postgres.MapReferenceError(err))
	}
	return nil
}

// GetLines retrieves lines in line order. NULL numerics read as zero.
func (r *GoodsReceiptRepo) GetLines(ctx context.Context, docID id.ID) ([]goods_receipt.Line, error) {
	sql, args, err := r.Builder().
		Select(
			"id", "receipt_id", "line_no", "product_id", "batch_id", "po_line_id", "location_id",
			"COALESCE(quantity, 0) AS quantity",
			"COALESCE(unit_cost, 0) AS unit_cost",
			"COALESCE(metadata, '{}'::jsonb) AS metadata",
		).
		From(goodsReceiptLinesTable).
		Where(squirrel.Eq{"receipt_id": docID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []goods_receipt.Line
	if err := pgxscan.Select(ctx, r.querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	return lines, nil
}

// UpdateMetadata rewrites the header metadata.
func (r *GoodsReceiptRepo) UpdateMetadata(ctx context.Context, doc *goods_receipt.GoodsReceipt) error {
	return r.setMetadata(ctx, doc.CompanyID, doc.ID, doc.Metadata)
}

// UpdateLineMetadata rewrites one line's metadata.
func (r *GoodsReceiptRepo) UpdateLineMetadata(ctx context.Context, line *goods_receipt.Line) error {
	sql, args, err := r.Builder().
		Update(goodsReceiptLinesTable).
		Set("metadata", line.Metadata).
		Where(squirrel.Eq{"id": line.ID, "receipt_id": line.ReceiptID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update line metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("goods receipt line", line.ID.String())
	}
	return nil
}

// FindByReference returns the newest matching receipt created at or after since, or nil.
func (r *GoodsReceiptRepo) FindByReference(ctx context.Context, companyID string, supplierID id.ID, reference string, since time.Time) (*goods_receipt.GoodsReceipt, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"company_id": companyID, "supplier_id": supplierID}).
		Where(squirrel.Expr("metadata->>'reference' = ?", reference)).
		Where(squirrel.GtOrEq{"created_at": since}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var doc goods_receipt.GoodsReceipt
	if err := pgxscan.Get(ctx, r.querier(ctx), &doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find by reference: %w", err)
	}
	return &doc, nil
}

// listWhere builds the shared filter of the list and count queries.
func listWhere(companyID string, filter goods_receipt.ListFilter) squirrel.And {
	where := squirrel.And{squirrel.Eq{"r.company_id": companyID}}
	if filter.SupplierID != nil {
		where = append(where, squirrel.Eq{"r.supplier_id": *filter.SupplierID})
	}
	if filter.DateFrom != nil {
		where = append(where, squirrel.GtOrEq{"r.date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		where = append(where, squirrel.LtOrEq{"r.date": *filter.DateTo})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"r.number": pattern},
			squirrel.Expr("r.metadata->>'reference' ILIKE ?", pattern),
		})
	}
	return where
}

// List returns receipt summaries with supplier name, line count and value, newest first.
func (r *GoodsReceiptRepo) List(ctx context.Context, companyID string, filter goods_receipt.ListFilter) (domain.ListResult[goods_receipt.Summary], error) {
	result := domain.ListResult[goods_receipt.Summary]{
		Items:  make([]goods_receipt.Summary, 0),
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	where := listWhere(companyID, filter)
	querier := r.querier(ctx)

	countSQL, countArgs, err := r.Builder().
		Select("COUNT(*)").
		From(goodsReceiptsTable + " r").
		Where(where).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	orderBy, err := parseOrderBy(filter.OrderBy, "r.", "date", "number", "created_at")
	if err != nil {
		return result, err
	}

	q := r.Builder().
		Select(
			"r.id", "r.number", "r.date", "r.status", "r.supplier_id",
			"COALESCE(s.name, '') AS supplier_name",
			"r.purchase_order_id",
			"COALESCE(r.metadata->>'reference', '') AS reference",
			"COALESCE(t.line_count, 0) AS line_count",
			"COALESCE(t.total_amount, 0) AS total_amount",
		).
		From(goodsReceiptsTable + " r").
		LeftJoin("suppliers s ON s.id = r.supplier_id").
		JoinClause("LEFT JOIN LATERAL (SELECT COUNT(*) AS line_count, SUM(" + lineTotalExpr + ") AS total_amount FROM " +
			goodsReceiptLinesTable + " l WHERE l.receipt_id = r.id) t ON true").
		Where(where).
		OrderBy(orderBy)
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list goods receipts: %w", err)
	}
	return result, nil
}
