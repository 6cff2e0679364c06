package document_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain"
	"backoffice/internal/domain/documents/goods_receipt"
)

func TestParseOrderBy(t *testing.T) {
	tests := []struct {
		name    string
		orderBy string
		want    string
		wantErr bool
	}{
		{name: "default", orderBy: "", want: "r.date DESC, r.created_at DESC"},
		{name: "ascending", orderBy: "number", want: "r.number ASC"},
		{name: "descending", orderBy: "-date", want: "r.date DESC"},
		{name: "explicit plus", orderBy: "+created_at", want: "r.created_at ASC"},
		{name: "unknown column", orderBy: "total; DROP TABLE x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOrderBy(tt.orderBy, "r.", "date", "number", "created_at")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperror.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListWhere(t *testing.T) {
	repo := NewGoodsReceiptRepo(nil)
	supplier := id.New()
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("company only", func(t *testing.T) {
		sql, args, err := repo.Builder().
			Select("r.id").
			From(goodsReceiptsTable + " r").
			Where(listWhere("company-1", goods_receipt.ListFilter{})).
			ToSql()
		require.NoError(t, err)

		assert.Equal(t, "SELECT r.id FROM goods_receipts r WHERE (r.company_id = $1)", sql)
		assert.Equal(t, []any{"company-1"}, args)
	})

	t.Run("all filters", func(t *testing.T) {
		filter := goods_receipt.ListFilter{
			ListFilter: domain.ListFilter{Search: "INV-7"},
			SupplierID: &supplier,
			DateFrom:   &from,
		}
		sql, args, err := repo.Builder().
			Select("r.id").
			From(goodsReceiptsTable + " r").
			Where(listWhere("company-1", filter)).
			ToSql()
		require.NoError(t, err)

		want := "SELECT r.id FROM goods_receipts r WHERE (r.company_id = $1 AND r.supplier_id = $2 AND r.date >= $3" +
			" AND (r.number ILIKE $4 OR r.metadata->>'reference' ILIKE $5))"
		assert.Equal(t, want, sql)
		require.Len(t, args, 5)
		assert.Equal(t, supplier.String(), args[1])
		assert.Equal(t, "%INV-7%", args[3])
		assert.Equal(t, "%INV-7%", args[4])
	})
}

func TestGoodsReceiptRepo_BaseSelectScopesByCompany(t *testing.T) {
	repo := NewGoodsReceiptRepo(nil)
	docID := id.New()

	sql, args, err := repo.baseSelect().
		Where(map[string]any{"id": docID, "company_id": "company-1"}).
		ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, company_id, number, date, status, created_by, created_at, updated_at, "+
			"supplier_id, purchase_order_id, metadata FROM goods_receipts WHERE company_id = $1 AND id = $2",
		sql)
	assert.Equal(t, []any{"company-1", docID.String()}, args)
}
