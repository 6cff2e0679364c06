package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"backoffice/internal/core/apperror"
	"backoffice/internal/core/id"
	"backoffice/internal/domain"
	"backoffice/internal/domain/documents/goods_receipt"
	"backoffice/internal/domain/registers/stock"
	"backoffice/internal/infrastructure/http/v1/dto"
	"backoffice/internal/infrastructure/storage/postgres"
)

// GoodsReceiptService is the intake API the handler drives.
type GoodsReceiptService interface {
	Create(ctx context.Context, in goods_receipt.CreateInput) (*goods_receipt.CreateResult, error)
	List(ctx context.Context, filter goods_receipt.ListFilter) (domain.ListResult[goods_receipt.Summary], error)
	Get(ctx context.Context, docID id.ID) (*goods_receipt.GoodsReceipt, error)
	Update(ctx context.Context, docID id.ID, in goods_receipt.UpdateInput) (*goods_receipt.GoodsReceipt, error)
}

// AuditReader returns the change history of an entity.
type AuditReader interface {
	GetEntityHistory(ctx context.Context, companyID, entityType string, entityID id.ID, limit int) ([]postgres.AuditEntry, error)
}

// StockReader returns the stock movements a document recorded.
type StockReader interface {
	GetByRecorder(ctx context.Context, recorderID id.ID) ([]stock.Movement, error)
}

// GoodsReceiptHandler handles HTTP requests for goods receipts.
type GoodsReceiptHandler struct {
	*BaseHandler
	service GoodsReceiptService
	audit   AuditReader
	stock   StockReader
}

// NewGoodsReceiptHandler creates a new goods receipt handler. audit and stock may be nil.
func NewGoodsReceiptHandler(base *BaseHandler, service GoodsReceiptService, audit AuditReader, stock StockReader) *GoodsReceiptHandler {
	return &GoodsReceiptHandler{
		BaseHandler: base,
		service:     service,
		audit:       audit,
		stock:       stock,
	}
}

// Create handles POST /goods-receipts.
func (h *GoodsReceiptHandler) Create(c *gin.Context) {
	var req dto.CreateGoodsReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput(h.now())
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromCreateResult(result))
}

// List handles GET /goods-receipts.
func (h *GoodsReceiptHandler) List(c *gin.Context) {
	filter := goods_receipt.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", filter.Limit)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", filter.OrderBy)

	if supplierID := c.Query("supplierId"); supplierID != "" {
		parsed, err := id.Parse(supplierID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplierId"))
			return
		}
		filter.SupplierID = &parsed
	}

	var ok bool
	if filter.DateFrom, ok = h.queryDate(c, "dateFrom"); !ok {
		return
	}
	if filter.DateTo, ok = h.queryDate(c, "dateTo"); !ok {
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := result.Items
	if items == nil {
		items = []goods_receipt.Summary{}
	}
	h.OK(c, dto.ListResponse[goods_receipt.Summary]{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /goods-receipts/:id.
func (h *GoodsReceiptHandler) Get(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	doc, err := h.service.Get(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Update handles PUT /goods-receipts/:id.
func (h *GoodsReceiptHandler) Update(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateGoodsReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.Update(c.Request.Context(), docID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// History handles GET /goods-receipts/:id/history.
func (h *GoodsReceiptHandler) History(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}
	if h.audit == nil {
		h.OK(c, []postgres.AuditEntry{})
		return
	}

	ctx := c.Request.Context()
	// Resolves 404 and company scoping before reading the trail.
	if _, err := h.service.Get(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	entries, err := h.audit.GetEntityHistory(ctx, h.companyID(c), goods_receipt.EntityType, docID, h.ParseIntQuery(c, "limit", 50))
	if err != nil {
		h.Error(c, err)
		return
	}
	if entries == nil {
		entries = []postgres.AuditEntry{}
	}
	h.OK(c, entries)
}

// Movements handles GET /goods-receipts/:id/movements.
func (h *GoodsReceiptHandler) Movements(c *gin.Context) {
	docID, ok := h.ParseID(c)
	if !ok {
		return
	}
	if h.stock == nil {
		h.OK(c, gin.H{"items": []stock.Movement{}})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.service.Get(ctx, docID); err != nil {
		h.Error(c, err)
		return
	}

	movements, err := h.stock.GetByRecorder(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if movements == nil {
		movements = []stock.Movement{}
	}
	h.OK(c, gin.H{"items": movements})
}

func (h *GoodsReceiptHandler) queryDate(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	parsed, err := dto.ParseDate(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+key).WithDetail("value", raw))
		return nil, false
	}
	return &parsed, true
}
