package purchase_order

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/apperror"
	appctx "backoffice/internal/core/context"
	"backoffice/internal/core/id"
)

// Service provides purchase order reads and intake-driven transitions.
type Service struct {
	repo Repository
}

// NewService creates a new purchase order service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func companyFrom(ctx context.Context) (string, error) {
	companyID := appctx.GetCompanyID(ctx)
	if companyID == "" {
		return "", apperror.NewUnauthorized("company context is required")
	}
	return companyID, nil
}

// ListPending returns orders still awaiting goods.
func (s *Service) ListPending(ctx context.Context) ([]*PurchaseOrder, error) {
	companyID, err := companyFrom(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.ListByStatus(ctx, companyID, PendingStatuses)
	if err != nil {
		return nil, fmt.Errorf("list pending purchase orders: %w", err)
	}
	return orders, nil
}

// Get returns the order with supplier details and per-line ordered/received/pending quantities.
func (s *Service) Get(ctx context.Context, orderID id.ID) (*PurchaseOrder, error) {
	companyID, err := companyFrom(ctx)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.GetByID(ctx, companyID, orderID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.GetLines(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get purchase order lines: %w", err)
	}
	for i := range lines {
		lines[i].ComputePending()
	}
	order.Lines = lines
	return order, nil
}

// MarkPartiallyReceived moves the order to partially_received.
// Whether everything ordered has arrived is not evaluated here.
func (s *Service) MarkPartiallyReceived(ctx context.Context, companyID string, orderID id.ID) error {
	if err := s.repo.SetStatus(ctx, companyID, orderID, StatusPartiallyReceived); err != nil {
		return fmt.Errorf("mark purchase order %s partially received: %w", orderID, err)
	}
	return nil
}

// RecordReceived adds a received quantity to an order line.
func (s *Service) RecordReceived(ctx context.Context, orderID, lineID id.ID, qty decimal.Decimal) error {
	if err := s.repo.AddReceivedQty(ctx, orderID, lineID, qty); err != nil {
		return fmt.Errorf("record received qty on purchase order line %s: %w", lineID, err)
	}
	return nil
}
