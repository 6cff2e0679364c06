package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/documents/purchase_invoice"
	"backoffice/internal/infrastructure/storage/postgres"
)

const (
	purchaseInvoicesTable     = "purchase_invoices"
	purchaseInvoiceLinesTable = "purchase_invoice_lines"
)

// PurchaseInvoiceRepo implements purchase_invoice.Repository.
type PurchaseInvoiceRepo struct {
	*BaseDocumentRepo[*purchase_invoice.Invoice]
	lineCols []string
}

var _ purchase_invoice.Repository = (*PurchaseInvoiceRepo)(nil)

// NewPurchaseInvoiceRepo creates a new purchase invoice repository.
func NewPurchaseInvoiceRepo(txm *postgres.TxManager) *PurchaseInvoiceRepo {
	return &PurchaseInvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txm,
			purchaseInvoicesTable,
			postgres.ExtractDBColumns[purchase_invoice.Invoice](),
			func() *purchase_invoice.Invoice { return &purchase_invoice.Invoice{} },
		),
		lineCols: postgres.ExtractDBColumns[purchase_invoice.Line](),
	}
}

// Create inserts the header and all lines.
func (r *PurchaseInvoiceRepo) Create(ctx context.Context, inv *purchase_invoice.Invoice) error {
	if err := r.BaseDocumentRepo.Create(ctx, inv); err != nil {
		return err
	}
	if len(inv.Lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(purchaseInvoiceLinesTable).
		Columns(r.lineCols...)
	for i := range inv.Lines {
		row := postgres.StructToMap(inv.Lines[i])
		values := make([]any, len(r.lineCols))
		for j, col := range r.lineCols {
			values[j] = row[col]
		}
		q = q.Values(values...)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert invoice lines: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert invoice lines: %w", postgres.MapReferenceError(err))
	}
	return nil
}

// GetByID returns the invoice with lines. It is not company-scoped: the ledger
// worker resolves invoices by id alone.
func (r *PurchaseInvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*purchase_invoice.Invoice, error) {
	inv, err := r.getWhere(ctx, squirrel.Eq{"id": invoiceID}, invoiceID.String())
	if err != nil {
		return nil, err
	}

	sql, args, err := r.Builder().
		Select(r.lineCols...).
		From(purchaseInvoiceLinesTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &inv.Lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get invoice lines: %w", err)
	}
	return inv, nil
}

// MarkPosted flips the invoice to posted and records the journal entry.
func (r *PurchaseInvoiceRepo) MarkPosted(ctx context.Context, invoiceID id.ID, entryID string) error {
	sql, args, err := r.Builder().
		Update(purchaseInvoicesTable).
		Set("status", purchase_invoice.StatusPosted).
		Set("journal_entry_id", entryID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": invoiceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark invoice posted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(purchaseInvoicesTable, invoiceID.String())
	}
	return nil
}
