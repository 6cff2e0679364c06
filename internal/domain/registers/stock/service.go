package stock

import (
	"context"
	"fmt"

	"backoffice/internal/core/apperror"
	appctx "backoffice/internal/core/context"
	"backoffice/internal/core/id"
)

// Service provides business operations for the stock register.
// Transactions are managed by the caller.
type Service struct {
	repo Repository
}

// NewService creates a new stock register service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordMovements validates and records movements of a document.
func (s *Service) RecordMovements(ctx context.Context, movements []Movement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if err := validate(m); err != nil {
			return apperror.NewValidation(fmt.Sprintf("movement %d: %s", i+1, err.Error()))
		}
	}

	return s.repo.CreateMovements(ctx, movements)
}

// GetByRecorder returns the caller company's movements of a document.
func (s *Service) GetByRecorder(ctx context.Context, recorderID id.ID) ([]Movement, error) {
	companyID := appctx.GetCompanyID(ctx)
	if companyID == "" {
		return nil, apperror.NewUnauthorized("company context is required")
	}
	return s.repo.GetMovementsByRecorder(ctx, companyID, recorderID)
}

func validate(m Movement) error {
	switch {
	case !m.Quantity.IsPositive():
		return fmt.Errorf("quantity must be positive")
	case id.IsNil(m.RecorderID):
		return fmt.Errorf("recorder is required")
	case id.IsNil(m.ProductID):
		return fmt.Errorf("product is required")
	case m.CompanyID == "":
		return fmt.Errorf("company is required")
	}
	switch m.RecordType {
	case RecordTypeReceipt, RecordTypeExpense:
		return nil
	default:
		return fmt.Errorf("unknown record type %q", m.RecordType)
	}
}
