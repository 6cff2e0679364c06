package stock

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	appctx "backoffice/internal/core/context"
	"backoffice/internal/core/id"
)

type memRepo struct {
	movements []Movement
}

func (r *memRepo) CreateMovements(_ context.Context, movements []Movement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *memRepo) GetMovementsByRecorder(_ context.Context, companyID string, recorderID id.ID) ([]Movement, error) {
	var out []Movement
	for _, m := range r.movements {
		if m.CompanyID == companyID && m.RecorderID == recorderID {
			out = append(out, m)
		}
	}
	return out, nil
}

func receipt(recorderID id.ID, qty string) Movement {
	return Movement{
		ID:           id.New(),
		CompanyID:    "c1",
		RecorderType: "goods_receipt",
		RecorderID:   recorderID,
		LineNo:       1,
		RecordType:   RecordTypeReceipt,
		ProductID:    id.New(),
		Quantity:     decimal.RequireFromString(qty),
		Period:       time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestService_RecordMovements(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo)
	doc := id.New()

	require.NoError(t, svc.RecordMovements(context.Background(), []Movement{receipt(doc, "120"), receipt(doc, "5")}))
	assert.Len(t, repo.movements, 2)

	require.NoError(t, svc.RecordMovements(context.Background(), nil))
	assert.Len(t, repo.movements, 2)
}

func TestService_RecordMovements_RejectsInvalid(t *testing.T) {
	doc := id.New()

	tests := []struct {
		name   string
		mutate func(m *Movement)
	}{
		{name: "zero quantity", mutate: func(m *Movement) { m.Quantity = decimal.Zero }},
		{name: "negative quantity", mutate: func(m *Movement) { m.Quantity = decimal.NewFromInt(-1) }},
		{name: "no recorder", mutate: func(m *Movement) { m.RecorderID = id.Nil() }},
		{name: "no product", mutate: func(m *Movement) { m.ProductID = id.Nil() }},
		{name: "no company", mutate: func(m *Movement) { m.CompanyID = "" }},
		{name: "unknown record type", mutate: func(m *Movement) { m.RecordType = "transfer" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memRepo{}
			bad := receipt(doc, "1")
			tt.mutate(&bad)

			err := NewService(repo).RecordMovements(context.Background(), []Movement{receipt(doc, "1"), bad})
			require.Error(t, err)
			assert.True(t, apperror.IsValidation(err))
			assert.Contains(t, err.Error(), "movement 2")
			assert.Empty(t, repo.movements)
		})
	}
}

func TestService_GetByRecorder(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo)
	doc := id.New()
	require.NoError(t, svc.RecordMovements(context.Background(), []Movement{receipt(doc, "3"), receipt(id.New(), "4")}))

	_, err := svc.GetByRecorder(context.Background(), doc)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "u1", CompanyID: "c1"})
	got, err := svc.GetByRecorder(ctx, doc)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, doc, got[0].RecorderID)
}
