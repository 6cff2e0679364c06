package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	appctx "backoffice/internal/core/context"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/documents/goods_receipt"
	"backoffice/internal/infrastructure/storage/postgres"
	"backoffice/pkg/logger"
)

const (
	// EventLedgerPostingRequested asks the worker to (re)post a purchase invoice.
	EventLedgerPostingRequested = "LedgerPostingRequested"

	aggregatePurchaseInvoice = "purchase_invoice"
)

// PostingRequest is the outbox payload of EventLedgerPostingRequested.
type PostingRequest struct {
	InvoiceID id.ID  `json:"invoiceId"`
	ActorID   string `json:"actorId"`
	Reason    string `json:"reason"`
}

// EventPublisher writes events to the outbox.
type EventPublisher interface {
	Publish(ctx context.Context, event postgres.DomainEvent) error
}

// RetryQueue implements goods_receipt.PostingQueue on top of the outbox.
type RetryQueue struct {
	publisher EventPublisher
}

var _ goods_receipt.PostingQueue = (*RetryQueue)(nil)

// NewRetryQueue creates a new retry queue.
func NewRetryQueue(publisher EventPublisher) *RetryQueue {
	return &RetryQueue{publisher: publisher}
}

// EnqueueLedgerPosting records a posting for the worker to retry.
func (q *RetryQueue) EnqueueLedgerPosting(ctx context.Context, invoiceID id.ID, actorID, reason string) error {
	err := q.publisher.Publish(ctx, postgres.DomainEvent{
		CompanyID:     appctx.GetCompanyID(ctx),
		AggregateType: aggregatePurchaseInvoice,
		AggregateID:   invoiceID,
		EventType:     EventLedgerPostingRequested,
		Payload:       PostingRequest{InvoiceID: invoiceID, ActorID: actorID, Reason: reason},
	})
	if err != nil {
		return fmt.Errorf("enqueue ledger posting: %w", err)
	}
	logger.Info(ctx, "ledger posting queued for retry", "invoice_id", invoiceID)
	return nil
}

// RetryHandler is the outbox handler that replays queued postings.
type RetryHandler struct {
	poster goods_receipt.LedgerPoster
}

var _ postgres.OutboxHandler = (*RetryHandler)(nil)

// NewRetryHandler creates a new retry handler.
func NewRetryHandler(poster goods_receipt.LedgerPoster) *RetryHandler {
	return &RetryHandler{poster: poster}
}

// Handle posts the invoice named by msg. Messages of other event types are acknowledged untouched.
func (h *RetryHandler) Handle(ctx context.Context, msg *postgres.OutboxMessage) error {
	if msg.EventType != EventLedgerPostingRequested {
		return nil
	}

	var req PostingRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return fmt.Errorf("decode posting request: %w", err)
	}
	if id.IsNil(req.InvoiceID) {
		req.InvoiceID = msg.AggregateID
	}

	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: req.ActorID, CompanyID: msg.CompanyID})
	res, err := h.poster.PostPurchaseInvoice(ctx, req.InvoiceID, req.ActorID)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("ledger rejected invoice %s: %s", req.InvoiceID, res.Message)
	}
	return nil
}
