package goods_receipt

import (
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/tx"
)

// Config tunes goods intake.
type Config struct {
	// TxTimeout bounds the intake transaction and every statement in it.
	TxTimeout time.Duration
	// LockTimeout bounds waits on row and table locks inside the transaction.
	LockTimeout time.Duration
	// DuplicateLookback is how far back a supplier reference counts as a duplicate.
	DuplicateLookback time.Duration
	// StripFactor is the base units per bare "STRIP" purchase unit.
	StripFactor decimal.Decimal
	// AttachmentInlineLimit is the largest attachment payload returned verbatim, in bytes.
	AttachmentInlineLimit int
	// NumberPrefix is the receipt number prefix.
	NumberPrefix string
	// InvoicePrefix replaces NumberPrefix when an invoice has no supplier reference.
	InvoicePrefix string
	// PricingRules are optional ;-separated CEL expressions, see PricingRules.
	PricingRules string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		TxTimeout:             30 * time.Second,
		LockTimeout:           10 * time.Second,
		DuplicateLookback:     60 * 24 * time.Hour,
		StripFactor:           decimal.NewFromInt(10),
		AttachmentInlineLimit: 1024,
		NumberPrefix:          "GRN",
		InvoicePrefix:         "PINV",
	}
}

// Budget is the transaction budget of an intake.
func (c Config) Budget() tx.Budget {
	return tx.Budget{Timeout: c.TxTimeout, LockTimeout: c.LockTimeout}
}
