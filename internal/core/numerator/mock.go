package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MockGenerator is an in-memory Generator for unit tests.
// Each (prefix, scope, year) gets its own counter.
type MockGenerator struct {
	GetNextNumberFunc func(ctx context.Context, cfg Config, period time.Time) (string, error)

	mu       sync.Mutex
	counters map[string]int64
}

// GetNextNumber implements Generator.
func (m *MockGenerator) GetNextNumber(ctx context.Context, cfg Config, period time.Time) (string, error) {
	if m.GetNextNumberFunc != nil {
		return m.GetNextNumberFunc(ctx, cfg, period)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	key := fmt.Sprintf("%s_%s_%d", cfg.Prefix, cfg.Scope, period.Year())
	m.counters[key]++
	width := cfg.PadWidth
	if width == 0 {
		width = 4
	}
	return fmt.Sprintf("%s-%d-%0*d", cfg.Prefix, period.Year(), width, m.counters[key]), nil
}

var _ Generator = (*MockGenerator)(nil)
