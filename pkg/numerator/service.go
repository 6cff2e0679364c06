// Package numerator provides document auto-numbering backed by the sys_sequences table.
//
// Every allocation is a single UPSERT ... RETURNING on the sequence row, so concurrent
// writers serialize on that row and never observe the same value. When called inside a
// transaction the row lock is held until commit and a rollback returns the number.
package numerator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	core "backoffice/internal/core/numerator"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierFunc resolves the querier for a call: the transaction in ctx when present.
type QuerierFunc func(ctx context.Context) Querier

// Service provides document numbering functionality.
type Service struct {
	querier QuerierFunc
}

var _ core.Generator = (*Service)(nil)

// New creates a numerator bound to a single querier. Use for tests and tooling.
func New(querier Querier) *Service {
	return &Service{querier: func(context.Context) Querier { return querier }}
}

// NewWithResolver creates a numerator that picks the querier per call.
func NewWithResolver(fn QuerierFunc) *Service {
	return &Service{querier: fn}
}

const nextValueSQL = `
	INSERT INTO sys_sequences (key, current_val)
	VALUES ($1, 1)
	ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + 1
	RETURNING current_val`

// GetNextNumber generates the next document number.
// Pattern: PREFIX-YEAR-NNNN (e.g., GRN-2026-0001)
func (s *Service) GetNextNumber(ctx context.Context, cfg core.Config, period time.Time) (string, error) {
	if s == nil || s.querier == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	key := BuildKey(cfg, period)
	var num int64
	if err := s.querier(ctx).QueryRow(ctx, nextValueSQL, key).Scan(&num); err != nil {
		return "", fmt.Errorf("next value for %s: %w", key, err)
	}
	return FormatNumber(cfg, period, num), nil
}

// SetNextNumber sets the last issued value (for migrating legacy numbering).
func (s *Service) SetNextNumber(ctx context.Context, cfg core.Config, period time.Time, value int64) error {
	key := BuildKey(cfg, period)
	var result int64
	return s.querier(ctx).QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = $2
		RETURNING current_val
	`, key, value).Scan(&result)
}

// BuildKey creates the sequence key: PREFIX[_SCOPE][_PERIOD].
func BuildKey(cfg core.Config, period time.Time) string {
	parts := []string{cfg.Prefix}
	if cfg.Scope != "" {
		parts = append(parts, cfg.Scope)
	}
	switch cfg.ResetPeriod {
	case "month":
		parts = append(parts, period.Format("2006_01"))
	case "year":
		parts = append(parts, period.Format("2006"))
	}
	return strings.Join(parts, "_")
}

// FormatNumber creates the final number string.
func FormatNumber(cfg core.Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 4
	}
	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, padWidth, num)
}

// ParseNumber extracts the numeric part (after the last dash) from a formatted number.
// Returns -1 if parsing fails.
func ParseNumber(formatted string) int64 {
	idx := strings.LastIndex(formatted, "-")
	if idx < 0 || idx == len(formatted)-1 {
		return -1
	}
	num, err := strconv.ParseInt(formatted[idx+1:], 10, 64)
	if err != nil {
		return -1
	}
	return num
}
