// Package numerator provides domain contracts for document auto-numbering.
package numerator

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "GRN")
	Prefix string

	// Scope separates independent sequences sharing a prefix (company id).
	Scope string

	// IncludeYear adds year to the number
	IncludeYear bool

	// PadWidth is the minimum width of the numeric part (default 4)
	PadWidth int

	// ResetPeriod: "year", "month", "never"
	ResetPeriod string
}

// DefaultConfig returns a yearly-reset config: PREFIX-YYYY-NNNN.
func DefaultConfig(prefix, scope string) Config {
	return Config{
		Prefix:      prefix,
		Scope:       scope,
		IncludeYear: true,
		PadWidth:    4,
		ResetPeriod: "year",
	}
}
