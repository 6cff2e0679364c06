package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/documents/purchase_order"
	"backoffice/internal/infrastructure/storage/postgres"
)

const (
	purchaseOrdersTable     = "purchase_orders"
	purchaseOrderLinesTable = "purchase_order_lines"
)

// PurchaseOrderRepo implements purchase_order.Repository.
type PurchaseOrderRepo struct {
	txm *postgres.TxManager
}

var _ purchase_order.Repository = (*PurchaseOrderRepo)(nil)

// NewPurchaseOrderRepo creates a new purchase order repository.
func NewPurchaseOrderRepo(txm *postgres.TxManager) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{txm: txm}
}

func (r *PurchaseOrderRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *PurchaseOrderRepo) headerSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(
			"po.id", "po.company_id", "po.number", "po.supplier_id",
			"COALESCE(s.name, '') AS supplier_name",
			"s.gstin AS supplier_gstin",
			"po.status", "po.order_date", "po.expected_date",
			"COALESCE(po.total_amount, 0) AS total_amount",
		).
		From(purchaseOrdersTable + " po").
		LeftJoin("suppliers s ON s.id = po.supplier_id")
}

// ListByStatus returns company orders in any of the statuses, newest first.
func (r *PurchaseOrderRepo) ListByStatus(ctx context.Context, companyID string, statuses []purchase_order.Status) ([]*purchase_order.PurchaseOrder, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	sql, args, err := r.headerSelect().
		Where(squirrel.Eq{"po.company_id": companyID, "po.status": names}).
		OrderBy("po.order_date DESC", "po.number DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	orders := make([]*purchase_order.PurchaseOrder, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &orders, sql, args...); err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	return orders, nil
}

// GetByID returns the order header with supplier name and GSTIN.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, companyID string, orderID id.ID) (*purchase_order.PurchaseOrder, error) {
	sql, args, err := r.headerSelect().
		Where(squirrel.Eq{"po.id": orderID, "po.company_id": companyID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var order purchase_order.PurchaseOrder
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &order, sql, args...); err != nil {
		return nil, postgres.MapNotFound(err, "purchase order", orderID.String())
	}
	return &order, nil
}

// GetLines returns order lines with product names.
func (r *PurchaseOrderRepo) GetLines(ctx context.Context, orderID id.ID) ([]purchase_order.Line, error) {
	sql, args, err := r.builder().
		Select(
			"l.id", "l.order_id", "l.product_id",
			"COALESCE(p.name, '') AS product_name",
			"COALESCE(l.ordered_qty, 0) AS ordered_qty",
			"COALESCE(l.received_qty, 0) AS received_qty",
			"COALESCE(l.unit_cost, 0) AS unit_cost",
		).
		From(purchaseOrderLinesTable + " l").
		LeftJoin("products p ON p.id = l.product_id").
		Where(squirrel.Eq{"l.order_id": orderID}).
		OrderBy("l.line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase_order.Line
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get purchase order lines: %w", err)
	}
	return lines, nil
}

// SetStatus changes the order status.
func (r *PurchaseOrderRepo) SetStatus(ctx context.Context, companyID string, orderID id.ID, status purchase_order.Status) error {
	sql, args, err := r.builder().
		Update(purchaseOrdersTable).
		Set("status", string(status)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": orderID, "company_id": companyID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase order", orderID.String())
	}
	return nil
}

// AddReceivedQty increments received_qty of an order line.
func (r *PurchaseOrderRepo) AddReceivedQty(ctx context.Context, orderID, lineID id.ID, qty decimal.Decimal) error {
	sql, args, err := r.builder().
		Update(purchaseOrderLinesTable).
		Set("received_qty", squirrel.Expr("COALESCE(received_qty, 0) + ?", qty)).
		Where(squirrel.Eq{"id": lineID, "order_id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("add received qty: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("purchase order line", lineID.String())
	}
	return nil
}
