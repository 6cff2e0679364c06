package goods_receipt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
)

// DuplicateGuard rejects a receipt whose supplier reference was already received
// within the lookback window.
type DuplicateGuard struct {
	repo     Repository
	lookback time.Duration
	now      func() time.Time
}

// NewDuplicateGuard creates a guard with the given lookback window.
func NewDuplicateGuard(repo Repository, lookback time.Duration) *DuplicateGuard {
	return &DuplicateGuard{repo: repo, lookback: lookback, now: time.Now}
}

// Check is a no-op when reference is blank.
func (g *DuplicateGuard) Check(ctx context.Context, companyID string, supplierID id.ID, reference string) error {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil
	}
	since := g.now().Add(-g.lookback)
	existing, err := g.repo.FindByReference(ctx, companyID, supplierID, reference, since)
	if err != nil {
		return fmt.Errorf("duplicate check: %w", err)
	}
	if existing != nil {
		return apperror.NewDuplicateReceipt(reference, existing.Number)
	}
	return nil
}
