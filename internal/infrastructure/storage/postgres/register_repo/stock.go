// Package register_repo provides PostgreSQL implementations for register repositories.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/id"
	"backoffice/internal/domain/registers/stock"
	"backoffice/internal/infrastructure/storage/postgres"
)

const stockMovementsTable = "reg_stock_movements"

var movementCols = []string{
	"id", "company_id", "recorder_type", "recorder_id", "line_no", "record_type",
	"product_id", "batch_id", "location_id", "quantity", "period", "created_at",
}

func movementRow(m stock.Movement) []any {
	return []any{
		m.ID, m.CompanyID, m.RecorderType, m.RecorderID, m.LineNo, string(m.RecordType),
		m.ProductID, m.BatchID, m.LocationID, m.Quantity, m.Period, m.CreatedAt,
	}
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateMovements copies movements inside a transaction and falls back to one
// multi-row INSERT outside of it.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []stock.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, movementRow(m))
	}

	if r.txm.GetTx(ctx) != nil {
		if _, err := postgres.NewBatchInserter(r.txm).CopyFromSlice(ctx, stockMovementsTable, movementCols, rows); err != nil {
			return fmt.Errorf("copy movements: %w", postgres.MapReferenceError(err))
		}
		return nil
	}

	sql, args, err := insertMovementsQuery(r.builder, rows).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", postgres.MapReferenceError(err))
	}
	return nil
}

func insertMovementsQuery(b squirrel.StatementBuilderType, rows [][]any) squirrel.InsertBuilder {
	q := b.Insert(stockMovementsTable).Columns(movementCols...)
	for _, row := range rows {
		q = q.Values(row...)
	}
	return q
}

// GetMovementsByRecorder returns the company's movements of one document in line order.
func (r *StockRepo) GetMovementsByRecorder(ctx context.Context, companyID string, recorderID id.ID) ([]stock.Movement, error) {
	sql, args, err := r.builder.
		Select(movementCols...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"company_id": companyID, "recorder_id": recorderID}).
		OrderBy("line_no", "created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	movements := make([]stock.Movement, 0)
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("get movements: %w", err)
	}
	return movements, nil
}
