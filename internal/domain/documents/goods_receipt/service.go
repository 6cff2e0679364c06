package goods_receipt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"backoffice/internal/core/apperror"
	appctx "backoffice/internal/core/context"
	"backoffice/internal/core/id"
	"backoffice/internal/core/numerator"
	"backoffice/internal/core/tx"
	"backoffice/internal/domain"
	"backoffice/internal/domain/catalogs/product"
	"backoffice/internal/domain/registers/stock"
	"backoffice/pkg/logger"
)

var tracer = otel.Tracer("backoffice/goods_receipt")

// Deps are the collaborators of the intake service.
type Deps struct {
	Repo      Repository
	Catalog   CatalogRepository
	Orders    PurchaseOrders
	Invoices  InvoiceRepository
	Numerator numerator.Generator
	TxManager tx.BudgetedManager
	Ledger    LedgerPoster
	// Queue is optional. Without it a failed posting is only reported.
	Queue PostingQueue
	// Stock is optional. Without it only batch on-hand quantities move.
	Stock StockRegister
}

// Service runs goods intake and the receipt companion operations.
type Service struct {
	deps      Deps
	cfg       Config
	calc      Calculator
	rules     *PricingRules
	guard     *DuplicateGuard
	loader    *ReferenceLoader
	sanitizer Sanitizer
	hooks     *domain.HookRegistry[*GoodsReceipt]
}

// NewService creates the intake service. It fails only when cfg.PricingRules does not compile.
func NewService(deps Deps, cfg Config) (*Service, error) {
	rules, err := CompilePricingRules(cfg.PricingRules)
	if err != nil {
		return nil, err
	}
	return &Service{
		deps:      deps,
		cfg:       cfg,
		calc:      NewCalculator(cfg.StripFactor),
		rules:     rules,
		guard:     NewDuplicateGuard(deps.Repo, cfg.DuplicateLookback),
		loader:    NewReferenceLoader(deps.Catalog),
		sanitizer: NewSanitizer(cfg.AttachmentInlineLimit),
		hooks:     domain.NewHookRegistry[*GoodsReceipt](),
	}, nil
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*GoodsReceipt] {
	return s.hooks
}

// CreateResult is the outcome of a successful intake.
type CreateResult struct {
	Receipt       *GoodsReceipt
	InvoiceID     id.ID
	InvoiceNumber string
	// Warning is set when the receipt was stored but ledger posting failed.
	Warning string
}

type caller struct {
	companyID string
	actorID   string
}

func callerFrom(ctx context.Context) (caller, error) {
	c := caller{companyID: appctx.GetCompanyID(ctx), actorID: appctx.GetUserID(ctx)}
	if c.companyID == "" {
		return c, apperror.NewUnauthorized("company context is required")
	}
	return c, nil
}

// Create records a goods intake: receipt, lines, batches, stock, product master,
// purchase-order progress and the derived invoice in one transaction, then posts
// the invoice to the ledger outside it.
func (s *Service) Create(ctx context.Context, in CreateInput) (result *CreateResult, err error) {
	ctx, span := tracer.Start(ctx, "goods_receipt.create",
		trace.WithAttributes(attribute.Int("receipt.items", len(in.Items))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	who, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("company.id", who.companyID))

	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := ValidatePricing(in.Items); err != nil {
		return nil, err
	}
	if err := s.rules.Check(in.Items); err != nil {
		return nil, err
	}
	if err := s.guard.Check(ctx, who.companyID, in.SupplierID, in.Reference); err != nil {
		return nil, err
	}

	ref, err := s.loader.Load(ctx, who.companyID, in.Items)
	if err != nil {
		return nil, fmt.Errorf("load reference data: %w", err)
	}

	receipt := NewGoodsReceipt(who.companyID, in.SupplierID, in.ReceivedDate)
	receipt.PurchaseOrderID = in.PurchaseOrderID
	receipt.CreatedBy = who.actorID
	receipt.Metadata = ReceiptMetadata{
		Reference:  strings.TrimSpace(in.Reference),
		Notes:      in.Notes,
		Attachment: in.Attachment,
	}
	if err := receipt.Validate(ctx); err != nil {
		return nil, err
	}

	var invoiceID id.ID
	var invoiceNumber string
	err = s.deps.TxManager.RunInTransactionWithBudget(ctx, s.cfg.Budget(), func(ctx context.Context) error {
		inv, err := s.persist(ctx, who, receipt, in, ref)
		if err != nil {
			return err
		}
		invoiceID = inv.ID
		invoiceNumber = inv.Number
		return nil
	})
	if err != nil {
		logger.Warn(ctx, "goods receipt intake rolled back",
			"supplier_id", in.SupplierID,
			"reference", receipt.Metadata.Reference,
			"error", err)
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.NewTransaction(err)
	}

	ctx = logger.WithDocument(ctx, EntityType, receipt.ID.String(), receipt.Number)
	logger.Info(ctx, "goods receipt created",
		"invoice_id", invoiceID,
		"invoice_number", invoiceNumber,
		"lines", len(receipt.Lines))

	if err := s.hooks.RunAfterCreate(ctx, receipt); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	result = &CreateResult{
		Receipt:       s.sanitizer.Receipt(receipt),
		InvoiceID:     invoiceID,
		InvoiceNumber: invoiceNumber,
		Warning:       s.postToLedger(ctx, invoiceID, who.actorID),
	}
	return result, nil
}

// persist runs inside the intake transaction.
func (s *Service) persist(ctx context.Context, who caller, receipt *GoodsReceipt, in CreateInput, ref *ReferenceData) (*invoiceRef, error) {
	cfg := numerator.DefaultConfig(s.cfg.NumberPrefix, who.companyID)
	number, err := s.deps.Numerator.GetNextNumber(ctx, cfg, receipt.Date)
	if err != nil {
		return nil, fmt.Errorf("generate receipt number: %w", err)
	}
	receipt.Number = number

	if err := s.deps.Repo.Create(ctx, receipt); err != nil {
		return nil, fmt.Errorf("create receipt: %w", err)
	}

	batches := NewBatchResolver(s.deps.Catalog, who.companyID, ref.Batches)
	builder := NewLineBuilder(s.deps.Catalog, who.companyID, receipt.ID)
	products := NewProductUpdater()

	lines := make([]Line, 0, len(in.Items))
	movements := make([]stock.Movement, 0, len(in.Items))
	for i := range in.Items {
		it := &in.Items[i]
		lineNo := i + 1

		prev, ok := ref.Products[it.ProductID]
		if !ok {
			return nil, missingProduct(lineNo, it.ProductID)
		}

		batch, err := batches.Resolve(ctx, it)
		if err != nil {
			return nil, err
		}
		costing := s.calc.Compute(costingInputFor(it))
		tax := ResolveTax(it, ref.TaxRates)

		line, err := builder.Build(ctx, lineNo, it, batch, costing, tax)
		if err != nil {
			return nil, err
		}
		if batch != nil {
			if err := batches.AddStock(ctx, batch.ID, costing.BaseQty); err != nil {
				return nil, err
			}
		}
		products.Observe(it, prev, costing, tax)
		lines = append(lines, line)
		if costing.BaseQty.IsPositive() {
			movements = append(movements, stockMovement(receipt, &line, costing.BaseQty))
		}
	}

	if err := s.deps.Repo.CreateLines(ctx, lines); err != nil {
		return nil, fmt.Errorf("create receipt lines: %w", err)
	}
	receipt.Lines = lines

	if s.deps.Stock != nil {
		if err := s.deps.Stock.RecordMovements(ctx, movements); err != nil {
			return nil, fmt.Errorf("record stock movements: %w", err)
		}
	}

	if err := s.applyProductUpdates(ctx, who.companyID, products.Updates()); err != nil {
		return nil, err
	}
	if err := s.advancePurchaseOrder(ctx, who.companyID, receipt); err != nil {
		return nil, err
	}

	invNumber := InvoiceNumber(receipt.Metadata.Reference, receipt.Number, s.cfg.NumberPrefix, s.cfg.InvoicePrefix)
	inv := DeriveInvoice(receipt, invNumber)
	if err := inv.Validate(ctx); err != nil {
		return nil, err
	}
	if err := s.deps.Invoices.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create purchase invoice: %w", err)
	}
	return &invoiceRef{ID: inv.ID, Number: inv.Number}, nil
}

type invoiceRef struct {
	ID     id.ID
	Number string
}

func (s *Service) applyProductUpdates(ctx context.Context, companyID string, updates []product.MasterUpdate) error {
	for _, upd := range updates {
		if err := s.deps.Catalog.UpdateProductMaster(ctx, companyID, upd); err != nil {
			return fmt.Errorf("update product %s: %w", upd.ProductID, err)
		}
	}
	return nil
}

// advancePurchaseOrder moves the linked order to partially received and books line
// quantities. Whether the order is now fully received is not evaluated here.
func (s *Service) advancePurchaseOrder(ctx context.Context, companyID string, receipt *GoodsReceipt) error {
	if receipt.PurchaseOrderID == nil {
		return nil
	}
	orderID := *receipt.PurchaseOrderID
	if err := s.deps.Orders.MarkPartiallyReceived(ctx, companyID, orderID); err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	for i := range receipt.Lines {
		line := &receipt.Lines[i]
		if line.POLineID == nil {
			continue
		}
		if err := s.deps.Orders.RecordReceived(ctx, orderID, *line.POLineID, line.Quantity); err != nil {
			return fmt.Errorf("record received quantity on line %d: %w", line.LineNo, err)
		}
	}
	return nil
}

// postToLedger posts the committed invoice and returns a warning when posting failed.
// A failed posting is queued for retry; the receipt and invoice stay as committed.
func (s *Service) postToLedger(ctx context.Context, invoiceID id.ID, actorID string) string {
	res, err := s.deps.Ledger.PostPurchaseInvoice(ctx, invoiceID, actorID)
	if err == nil && res.Success {
		logger.Info(ctx, "purchase invoice posted", "invoice_id", invoiceID, "entry_id", res.EntryID)
		return ""
	}

	reason := res.Message
	if err != nil {
		reason = err.Error()
	}
	if reason == "" {
		reason = "ledger rejected the entry"
	}
	warning := fmt.Sprintf("goods receipt saved but ledger posting failed: %s", reason)

	logger.Error(ctx, "ledger posting failed",
		"invoice_id", invoiceID,
		"error", apperror.NewLedgerPosting(invoiceID.String(), errors.New(reason)))

	if s.deps.Queue != nil {
		if qerr := s.deps.Queue.EnqueueLedgerPosting(ctx, invoiceID, actorID, reason); qerr != nil {
			logger.Error(ctx, "failed to queue ledger posting retry", "invoice_id", invoiceID, "error", qerr)
		} else {
			warning += "; a retry has been queued"
		}
	}
	return warning
}
