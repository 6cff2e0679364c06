// Package numerator provides domain contracts for document auto-numbering.
// Implementations live in pkg/numerator.
package numerator

import (
	"context"
	"time"
)

// Generator generates sequential document numbers.
type Generator interface {
	// GetNextNumber allocates the next number of the sequence identified by cfg and period.
	// When ctx carries a transaction the allocation joins it, so a rollback releases the number.
	GetNextNumber(ctx context.Context, cfg Config, period time.Time) (string, error)
}
