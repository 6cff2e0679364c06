package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/id"
	"backoffice/pkg/logger"
)

// OutboxStatus represents the state of an outbox message.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

const (
	// DefaultOutboxMaxRetries is the number of failed attempts after which a message is parked as failed.
	DefaultOutboxMaxRetries = 5

	// outboxLease keeps a claimed message invisible to other relays while it is handled.
	outboxLease = 5 * time.Minute
)

// OutboxMessage represents a message in the transactional outbox.
type OutboxMessage struct {
	ID            id.ID        `db:"id"`
	CompanyID     string       `db:"company_id"`
	AggregateType string       `db:"aggregate_type"`
	AggregateID   id.ID        `db:"aggregate_id"`
	EventType     string       `db:"event_type"`
	Payload       []byte       `db:"payload"`
	Status        OutboxStatus `db:"status"`
	RetryCount    int          `db:"retry_count"`
	LastError     *string      `db:"last_error"`
	NextRetryAt   *time.Time   `db:"next_retry_at"`
	CreatedAt     time.Time    `db:"created_at"`
	PublishedAt   *time.Time   `db:"published_at"`
}

// DomainEvent represents an event to be published via outbox.
type DomainEvent struct {
	CompanyID     string
	AggregateType string
	AggregateID   id.ID
	EventType     string
	Payload       any
}

// OutboxPublisher writes events to the outbox table.
type OutboxPublisher struct {
	txManager *TxManager
}

// NewOutboxPublisher creates a new outbox publisher.
func NewOutboxPublisher(txManager *TxManager) *OutboxPublisher {
	return &OutboxPublisher{txManager: txManager}
}

// Publish writes an event to the outbox. Inside a transaction the write joins it;
// otherwise it is committed on its own.
func (p *OutboxPublisher) Publish(ctx context.Context, event DomainEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = p.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_outbox (id, company_id, aggregate_type, aggregate_id, event_type, payload, status, retry_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)
	`, id.New(), event.CompanyID, event.AggregateType, event.AggregateID, event.EventType, payload, OutboxStatusPending, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

// OutboxHandler processes outbox messages.
type OutboxHandler interface {
	// Handle processes a message and returns error if failed
	Handle(ctx context.Context, msg *OutboxMessage) error
}

// OutboxRelay reads and processes messages from the outbox.
// Used by the background worker.
type OutboxRelay struct {
	txManager  *TxManager
	batchSize  int
	maxRetries int
	handler    OutboxHandler
}

// NewOutboxRelay creates a new outbox relay.
func NewOutboxRelay(txManager *TxManager, batchSize int, handler OutboxHandler) *OutboxRelay {
	return &OutboxRelay{
		txManager:  txManager,
		batchSize:  batchSize,
		maxRetries: DefaultOutboxMaxRetries,
		handler:    handler,
	}
}

// ProcessBatch claims due messages and hands each to the handler.
// Returns number of successfully processed messages.
func (r *OutboxRelay) ProcessBatch(ctx context.Context) (int, error) {
	messages, err := r.claim(ctx)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, msg := range messages {
		if err := r.processMessage(ctx, msg); err != nil {
			logger.Warn(ctx, "outbox message failed",
				"message_id", msg.ID,
				"event_type", msg.EventType,
				"retry_count", msg.RetryCount,
				"error", err,
			)
			continue
		}
		processed++
	}
	return processed, nil
}

// claim leases a batch of due pending messages. SKIP LOCKED lets several relays run side by side.
func (r *OutboxRelay) claim(ctx context.Context) ([]*OutboxMessage, error) {
	messages := make([]*OutboxMessage, 0, r.batchSize)
	err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &messages, `
		UPDATE sys_outbox
		SET next_retry_at = NOW() + $3 * INTERVAL '1 second'
		WHERE id IN (
			SELECT id FROM sys_outbox
			WHERE status = $1
			  AND (next_retry_at IS NULL OR next_retry_at <= NOW())
			ORDER BY created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, company_id, aggregate_type, aggregate_id, event_type, payload, status,
			retry_count, last_error, next_retry_at, created_at, published_at
	`, OutboxStatusPending, r.batchSize, int(outboxLease.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("claim outbox messages: %w", err)
	}
	return messages, nil
}

// processMessage handles a single outbox message.
func (r *OutboxRelay) processMessage(ctx context.Context, msg *OutboxMessage) error {
	querier := r.txManager.GetQuerier(ctx)

	if err := r.handler.Handle(ctx, msg); err != nil {
		status := OutboxStatusPending
		if msg.RetryCount+1 >= r.maxRetries {
			status = OutboxStatusFailed
		}

		_, updateErr := querier.Exec(ctx, `
			UPDATE sys_outbox
			SET retry_count = retry_count + 1,
			    last_error = $1,
			    next_retry_at = $2,
			    status = $3
			WHERE id = $4
		`, err.Error(), time.Now().UTC().Add(RetryDelay(msg.RetryCount)), status, msg.ID)
		if updateErr != nil {
			return fmt.Errorf("update failed message: %w", updateErr)
		}
		return err
	}

	_, err := querier.Exec(ctx, `
		UPDATE sys_outbox
		SET status = $1, published_at = $2
		WHERE id = $3
	`, OutboxStatusPublished, time.Now().UTC(), msg.ID)
	if err != nil {
		return fmt.Errorf("mark message published: %w", err)
	}
	return nil
}

// RetryDelay is the linear backoff before the next attempt of a message that failed retryCount times.
func RetryDelay(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	return time.Duration(retryCount+1) * time.Minute
}
