package register_repo

import (
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/id"
	"backoffice/internal/domain/registers/stock"
)

func TestMovementRow_MatchesColumns(t *testing.T) {
	batch := id.New()
	m := stock.Movement{
		ID:           id.New(),
		CompanyID:    "c1",
		RecorderType: "goods_receipt",
		RecorderID:   id.New(),
		LineNo:       2,
		RecordType:   stock.RecordTypeReceipt,
		ProductID:    id.New(),
		BatchID:      &batch,
		Quantity:     decimal.NewFromInt(120),
		Period:       time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	row := movementRow(m)
	require.Len(t, row, len(movementCols))
	assert.Equal(t, "receipt", row[5])
	assert.Equal(t, &batch, row[7])
}

func TestInsertMovementsQuery(t *testing.T) {
	b := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	m := stock.Movement{ID: id.New(), CompanyID: "c1", RecordType: stock.RecordTypeReceipt}

	sql, args, err := insertMovementsQuery(b, [][]any{movementRow(m), movementRow(m)}).ToSql()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sql, "INSERT INTO reg_stock_movements ("+strings.Join(movementCols, ",")+") VALUES "))
	assert.Equal(t, 1, strings.Count(sql, "),("))
	assert.Contains(t, sql, "$24")
	assert.Len(t, args, 2*len(movementCols))
}
