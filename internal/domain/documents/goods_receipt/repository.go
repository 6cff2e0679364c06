package goods_receipt

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"backoffice/internal/core/id"
	"backoffice/internal/domain"
	"backoffice/internal/domain/catalogs/product"
	"backoffice/internal/domain/catalogs/taxrate"
	"backoffice/internal/domain/catalogs/warehouse"
	"backoffice/internal/domain/documents/purchase_invoice"
	"backoffice/internal/domain/registers/stock"
)

// Repository defines goods receipt persistence.
type Repository interface {
	Create(ctx context.Context, doc *GoodsReceipt) error
	CreateLines(ctx context.Context, lines []Line) error

	GetByID(ctx context.Context, companyID string, docID id.ID) (*GoodsReceipt, error)
	GetLines(ctx context.Context, docID id.ID) ([]Line, error)

	// UpdateMetadata rewrites the header bag.
	UpdateMetadata(ctx context.Context, doc *GoodsReceipt) error
	// UpdateLineMetadata rewrites one line bag.
	UpdateLineMetadata(ctx context.Context, line *Line) error

	// FindByReference returns the newest receipt of the supplier whose metadata reference
	// equals reference and that was created at or after since, or nil.
	FindByReference(ctx context.Context, companyID string, supplierID id.ID, reference string, since time.Time) (*GoodsReceipt, error)

	List(ctx context.Context, companyID string, filter ListFilter) (domain.ListResult[Summary], error)
}

// ListFilter for filtering goods receipts.
type ListFilter struct {
	domain.ListFilter

	SupplierID *id.ID
	DateFrom   *time.Time
	DateTo     *time.Time
}

// CatalogRepository is what intake reads and writes on the product side.
type CatalogRepository interface {
	GetProductsByIDs(ctx context.Context, companyID string, ids []id.ID) ([]*product.Product, error)
	// FindBatches returns batches of the company with product in productIDs and batch_no in batchNos.
	FindBatches(ctx context.Context, companyID string, productIDs []id.ID, batchNos []string) ([]*product.Batch, error)
	ListTaxRates(ctx context.Context, companyID string) (taxrate.Table, error)

	// UpsertBatch inserts b, or returns the row already holding (company, product, batch_no).
	UpsertBatch(ctx context.Context, b *product.Batch) (*product.Batch, error)
	AddBatchStock(ctx context.Context, batchID id.ID, qty decimal.Decimal) error

	// EnsureDefaultLocation returns the company's default location, creating it on first use.
	EnsureDefaultLocation(ctx context.Context, companyID string) (*warehouse.Location, error)

	// UpdateProductMaster writes price/cost when set and merges metadata at the top level.
	UpdateProductMaster(ctx context.Context, companyID string, upd product.MasterUpdate) error
}

// PurchaseOrders is the purchase-order side of intake.
type PurchaseOrders interface {
	MarkPartiallyReceived(ctx context.Context, companyID string, orderID id.ID) error
	RecordReceived(ctx context.Context, orderID, lineID id.ID, qty decimal.Decimal) error
}

// InvoiceRepository persists the derived invoice.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *purchase_invoice.Invoice) error
}

// LedgerResult is the outcome reported by the ledger.
type LedgerResult struct {
	Success bool
	EntryID string
	Message string
}

// LedgerPoster posts a committed purchase invoice into the general ledger.
type LedgerPoster interface {
	PostPurchaseInvoice(ctx context.Context, invoiceID id.ID, actorID string) (LedgerResult, error)
}

// PostingQueue records a ledger posting to retry later.
type PostingQueue interface {
	EnqueueLedgerPosting(ctx context.Context, invoiceID id.ID, actorID, reason string) error
}

// StockRegister records stock movements inside the intake transaction.
type StockRegister interface {
	RecordMovements(ctx context.Context, movements []stock.Movement) error
}
