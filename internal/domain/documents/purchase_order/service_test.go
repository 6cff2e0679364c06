package purchase_order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice/internal/core/apperror"
	appctx "backoffice/internal/core/context"
	"backoffice/internal/core/id"
)

type memRepo struct {
	orders map[id.ID]*PurchaseOrder
	lines  map[id.ID][]Line
}

func (m *memRepo) ListByStatus(ctx context.Context, companyID string, statuses []Status) ([]*PurchaseOrder, error) {
	var out []*PurchaseOrder
	for _, o := range m.orders {
		for _, s := range statuses {
			if o.CompanyID == companyID && o.Status == s {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

func (m *memRepo) GetByID(ctx context.Context, companyID string, orderID id.ID) (*PurchaseOrder, error) {
	o, ok := m.orders[orderID]
	if !ok || o.CompanyID != companyID {
		return nil, apperror.NewNotFound("purchase order", orderID)
	}
	cp := *o
	return &cp, nil
}

func (m *memRepo) GetLines(ctx context.Context, orderID id.ID) ([]Line, error) {
	return append([]Line(nil), m.lines[orderID]...), nil
}

func (m *memRepo) SetStatus(ctx context.Context, companyID string, orderID id.ID, status Status) error {
	o, ok := m.orders[orderID]
	if !ok || o.CompanyID != companyID {
		return apperror.NewNotFound("purchase order", orderID)
	}
	o.Status = status
	return nil
}

func (m *memRepo) AddReceivedQty(ctx context.Context, orderID, lineID id.ID, qty decimal.Decimal) error {
	for i, l := range m.lines[orderID] {
		if l.ID == lineID {
			m.lines[orderID][i].ReceivedQty = l.ReceivedQty.Add(qty)
			return nil
		}
	}
	return apperror.NewNotFound("purchase order line", lineID)
}

func callerCtx(companyID string) context.Context {
	return appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "u1", CompanyID: companyID})
}

func TestService_Get_ComputesPending(t *testing.T) {
	orderID := id.New()
	repo := &memRepo{
		orders: map[id.ID]*PurchaseOrder{orderID: {ID: orderID, CompanyID: "c1", Status: StatusSent}},
		lines: map[id.ID][]Line{orderID: {
			{ID: id.New(), OrderedQty: decimal.NewFromInt(10), ReceivedQty: decimal.NewFromInt(4)},
			{ID: id.New(), OrderedQty: decimal.NewFromInt(5), ReceivedQty: decimal.NewFromInt(7)},
		}},
	}
	svc := NewService(repo)

	order, err := svc.Get(callerCtx("c1"), orderID)
	require.NoError(t, err)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, "6", order.Lines[0].PendingQty.String())
	assert.True(t, order.Lines[1].PendingQty.IsZero())

	_, err = svc.Get(callerCtx("c2"), orderID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestService_ListPending(t *testing.T) {
	pending, done := id.New(), id.New()
	repo := &memRepo{orders: map[id.ID]*PurchaseOrder{
		pending: {ID: pending, CompanyID: "c1", Status: StatusApproved},
		done:    {ID: done, CompanyID: "c1", Status: StatusReceived},
	}}
	svc := NewService(repo)

	orders, err := svc.ListPending(callerCtx("c1"))
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, pending, orders[0].ID)

	_, err = svc.ListPending(context.Background())
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestService_MarkPartiallyReceivedAndRecord(t *testing.T) {
	orderID, lineID := id.New(), id.New()
	repo := &memRepo{
		orders: map[id.ID]*PurchaseOrder{orderID: {ID: orderID, CompanyID: "c1", Status: StatusSent}},
		lines:  map[id.ID][]Line{orderID: {{ID: lineID, OrderedQty: decimal.NewFromInt(10)}}},
	}
	svc := NewService(repo)

	require.NoError(t, svc.MarkPartiallyReceived(context.Background(), "c1", orderID))
	require.NoError(t, svc.RecordReceived(context.Background(), orderID, lineID, decimal.NewFromInt(3)))

	assert.Equal(t, StatusPartiallyReceived, repo.orders[orderID].Status)
	assert.Equal(t, "3", repo.lines[orderID][0].ReceivedQty.String())
	assert.True(t, repo.orders[orderID].IsPending())

	err := svc.MarkPartiallyReceived(context.Background(), "c1", id.New())
	assert.True(t, apperror.IsNotFound(err))
}
