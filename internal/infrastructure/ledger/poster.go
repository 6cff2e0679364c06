package ledger

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/core/tx"
	"backoffice/internal/domain/documents/goods_receipt"
	"backoffice/internal/domain/documents/purchase_invoice"
	"backoffice/pkg/logger"
)

var tracer = otel.Tracer("backoffice/ledger")

// JournalWriter persists a journal entry and returns its id.
type JournalWriter interface {
	Write(ctx context.Context, j Journal, actorID string) (string, error)
}

// Poster implements goods_receipt.LedgerPoster.
type Poster struct {
	txm      tx.Manager
	invoices purchase_invoice.Repository
	journals JournalWriter
	accounts Accounts
}

var _ goods_receipt.LedgerPoster = (*Poster)(nil)

// NewPoster creates a new ledger poster.
func NewPoster(txm tx.Manager, invoices purchase_invoice.Repository, journals JournalWriter, accounts Accounts) *Poster {
	return &Poster{
		txm:      txm,
		invoices: invoices,
		journals: journals,
		accounts: accounts,
	}
}

// PostPurchaseInvoice writes the invoice's journal entry and marks the invoice posted, in one transaction.
// Rejections the ledger can explain (unbalanced invoice, unknown account) come back as an
// unsuccessful result; infrastructure failures come back as an error.
func (p *Poster) PostPurchaseInvoice(ctx context.Context, invoiceID id.ID, actorID string) (goods_receipt.LedgerResult, error) {
	ctx, span := tracer.Start(ctx, "ledger.PostPurchaseInvoice",
		trace.WithAttributes(attribute.String("invoice.id", invoiceID.String())))
	defer span.End()

	var result goods_receipt.LedgerResult
	var number string
	err := p.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		inv, err := p.invoices.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		number = inv.Number

		journal, err := BuildPurchaseJournal(inv, p.accounts)
		if err != nil {
			return err
		}

		entryID, err := p.journals.Write(ctx, journal, actorID)
		if err != nil {
			return err
		}
		if inv.Status != purchase_invoice.StatusPosted {
			if err := p.invoices.MarkPosted(ctx, invoiceID, entryID); err != nil {
				return err
			}
		}

		result = goods_receipt.LedgerResult{Success: true, EntryID: entryID}
		return nil
	})
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok && rejection(appErr) {
			span.SetStatus(codes.Error, appErr.Message)
			return goods_receipt.LedgerResult{Success: false, Message: appErr.Message}, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return goods_receipt.LedgerResult{}, err
	}

	logger.Info(ctx, "purchase invoice posted",
		"invoice_id", invoiceID,
		"invoice_number", number,
		"entry_id", result.EntryID)
	return result, nil
}

func rejection(err *apperror.AppError) bool {
	switch err.Code {
	case apperror.CodeValidation, apperror.CodeBusinessRule, apperror.CodeNotFound:
		return true
	}
	return false
}
