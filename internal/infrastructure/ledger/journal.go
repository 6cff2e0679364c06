// Package ledger posts purchase invoices into the general ledger as balanced journal entries.
package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/documents/purchase_invoice"
)

// ReferencePurchaseInvoice is the reference type recorded on entries posted from invoices.
const ReferencePurchaseInvoice = "PURCHASE_INVOICE"

// Accounts names the chart-of-accounts codes a purchase invoice posts to.
type Accounts struct {
	Inventory string
	InputTax  string
	Payable   string
}

// DefaultAccounts returns the standard purchase posting accounts.
func DefaultAccounts() Accounts {
	return Accounts{
		Inventory: "1400",
		InputTax:  "1450",
		Payable:   "2100",
	}
}

// Codes lists the distinct account codes.
func (a Accounts) Codes() []string {
	codes := []string{a.Inventory}
	if a.InputTax != a.Inventory {
		codes = append(codes, a.InputTax)
	}
	if a.Payable != a.Inventory && a.Payable != a.InputTax {
		codes = append(codes, a.Payable)
	}
	return codes
}

// JournalLine is one debit or credit of an entry. Exactly one side is non-zero.
type JournalLine struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// Journal is an entry ready to be written.
type Journal struct {
	CompanyID      string
	IdempotencyKey string
	Narration      string
	PostingDate    time.Time
	ReferenceType  string
	ReferenceID    string
	Lines          []JournalLine
}

// IdempotencyKey identifies the single entry an invoice may produce.
func IdempotencyKey(inv *purchase_invoice.Invoice) string {
	return "purchase-invoice:" + inv.ID.String()
}

// BuildPurchaseJournal turns an invoice into DR Inventory (subtotal), DR Input Tax (tax total)
// and CR Accounts Payable (grand total). A zero tax total produces no tax line.
func BuildPurchaseJournal(inv *purchase_invoice.Invoice, accounts Accounts) (Journal, error) {
	subtotal := types.RoundMoney(inv.Subtotal)
	tax := types.RoundMoney(inv.TaxTotal)
	total := types.RoundMoney(inv.TotalAmount)

	if subtotal.IsNegative() || tax.IsNegative() {
		return Journal{}, apperror.NewValidation("invoice amounts must not be negative").
			WithDetail("invoiceId", inv.ID.String())
	}
	if !subtotal.Add(tax).Equal(total) {
		return Journal{}, apperror.NewValidation(fmt.Sprintf(
			"invoice %s does not balance: subtotal %s + tax %s != total %s",
			inv.Number, subtotal.StringFixed(2), tax.StringFixed(2), total.StringFixed(2),
		)).WithDetail("invoiceId", inv.ID.String())
	}
	if total.IsZero() {
		return Journal{}, apperror.NewValidation("invoice total is zero, nothing to post").
			WithDetail("invoiceId", inv.ID.String())
	}

	lines := []JournalLine{{AccountCode: accounts.Inventory, Debit: subtotal, Credit: decimal.Zero}}
	if tax.IsPositive() {
		lines = append(lines, JournalLine{AccountCode: accounts.InputTax, Debit: tax, Credit: decimal.Zero})
	}
	lines = append(lines, JournalLine{AccountCode: accounts.Payable, Debit: decimal.Zero, Credit: total})

	return Journal{
		CompanyID:      inv.CompanyID,
		IdempotencyKey: IdempotencyKey(inv),
		Narration:      fmt.Sprintf("Purchase invoice %s", inv.Number),
		PostingDate:    inv.Date,
		ReferenceType:  ReferencePurchaseInvoice,
		ReferenceID:    inv.ID.String(),
		Lines:          lines,
	}, nil
}

// Balanced reports whether debits equal credits.
func (j Journal) Balanced() bool {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range j.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit.Equal(credit)
}
