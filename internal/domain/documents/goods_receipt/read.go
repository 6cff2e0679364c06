package goods_receipt

import (
	"context"
	"fmt"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain"
	"backoffice/internal/domain/catalogs/product"
	"backoffice/internal/domain/catalogs/taxrate"
	"backoffice/pkg/logger"
)

// List returns receipt summaries of the caller's company, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[Summary], error) {
	who, err := callerFrom(ctx)
	if err != nil {
		return domain.ListResult[Summary]{}, err
	}
	filter.ListFilter = filter.ListFilter.Normalize()
	res, err := s.deps.Repo.List(ctx, who.companyID, filter)
	if err != nil {
		return domain.ListResult[Summary]{}, fmt.Errorf("list goods receipts: %w", err)
	}
	return res, nil
}

// Get returns the receipt with its lines. The attachment is returned in full.
func (s *Service) Get(ctx context.Context, docID id.ID) (*GoodsReceipt, error) {
	who, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, who.companyID, docID)
}

func (s *Service) load(ctx context.Context, companyID string, docID id.ID) (*GoodsReceipt, error) {
	doc, err := s.deps.Repo.GetByID(ctx, companyID, docID)
	if err != nil {
		return nil, err
	}
	lines, err := s.deps.Repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines
	return doc, nil
}

// Update rewrites header metadata and the metadata of the listed lines in one transaction.
// Tax ids are resolved again and the resolved purchase tax is merged into the product master.
// Batches, costing, purchase-order state and the invoice are left as they are.
func (s *Service) Update(ctx context.Context, docID id.ID, in UpdateInput) (*GoodsReceipt, error) {
	who, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	var doc *GoodsReceipt
	err = s.deps.TxManager.RunInTransactionWithBudget(ctx, s.cfg.Budget(), func(ctx context.Context) error {
		var err error
		doc, err = s.load(ctx, who.companyID, docID)
		if err != nil {
			return err
		}

		applyHeaderUpdate(&doc.Metadata, in)
		if err := doc.Metadata.Validate(); err != nil {
			return err
		}
		doc.Touch()
		if err := s.deps.Repo.UpdateMetadata(ctx, doc); err != nil {
			return fmt.Errorf("update receipt metadata: %w", err)
		}

		if len(in.Lines) == 0 {
			return nil
		}
		rates, err := s.deps.Catalog.ListTaxRates(ctx, who.companyID)
		if err != nil {
			return fmt.Errorf("load tax rates: %w", err)
		}
		return s.updateLines(ctx, who.companyID, doc, in.Lines, rates)
	})
	if err != nil {
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.NewTransaction(err)
	}

	ctx = logger.WithDocument(ctx, EntityType, doc.ID.String(), doc.Number)
	logger.Info(ctx, "goods receipt updated", "lines_updated", len(in.Lines))

	if err := s.hooks.RunAfterUpdate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "error", err)
	}
	return s.sanitizer.Receipt(doc), nil
}

func applyHeaderUpdate(md *ReceiptMetadata, in UpdateInput) {
	if in.Reference != nil {
		md.Reference = *in.Reference
	}
	if in.Notes != nil {
		md.Notes = *in.Notes
	}
	switch {
	case in.RemoveAttachment:
		md.Attachment = nil
	case in.Attachment != nil:
		md.Attachment = in.Attachment
	}
}

func (s *Service) updateLines(ctx context.Context, companyID string, doc *GoodsReceipt, updates []LineUpdate, rates taxrate.Table) error {
	index := make(map[id.ID]int, len(doc.Lines))
	for i := range doc.Lines {
		index[doc.Lines[i].ID] = i
	}

	for _, upd := range updates {
		i, ok := index[upd.LineID]
		if !ok {
			return apperror.NewNotFound("goods receipt line", upd.LineID.String())
		}
		line := &doc.Lines[i]
		line.Metadata = upd.Metadata
		resolveLineTax(line, rates)
		if err := line.Metadata.Validate(line.LineNo); err != nil {
			return err
		}
		if err := s.deps.Repo.UpdateLineMetadata(ctx, line); err != nil {
			return fmt.Errorf("update line %d metadata: %w", line.LineNo, err)
		}

		patch, ok := taxPatch(line.Metadata.Tax)
		if !ok {
			continue
		}
		master := product.MasterUpdate{ProductID: line.ProductID, Metadata: patch}
		if err := s.deps.Catalog.UpdateProductMaster(ctx, companyID, master); err != nil {
			return fmt.Errorf("update product %s tax: %w", line.ProductID, err)
		}
	}
	return nil
}
