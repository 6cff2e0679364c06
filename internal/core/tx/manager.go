// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces; the pgx implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
	"time"
)

// Manager defines the contract for transaction management.
type Manager interface {
	// RunInTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	//
	// Nested calls reuse the existing transaction from context.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Budget bounds a single transaction.
type Budget struct {
	// Timeout caps each statement inside the transaction and the transaction as a whole.
	Timeout time.Duration
	// LockTimeout caps how long any statement waits for a row or table lock.
	LockTimeout time.Duration
}

// BudgetedManager runs a transaction under an explicit time budget.
type BudgetedManager interface {
	Manager

	RunInTransactionWithBudget(ctx context.Context, budget Budget, fn func(ctx context.Context) error) error
}
