package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"backoffice/internal/core/id"
	"backoffice/internal/domain/documents/purchase_order"
)

// PurchaseOrderService is the companion read API used while receiving goods.
type PurchaseOrderService interface {
	ListPending(ctx context.Context) ([]*purchase_order.PurchaseOrder, error)
	Get(ctx context.Context, orderID id.ID) (*purchase_order.PurchaseOrder, error)
}

// PurchaseOrderHandler handles HTTP requests for purchase orders.
type PurchaseOrderHandler struct {
	*BaseHandler
	service PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new purchase order handler.
func NewPurchaseOrderHandler(base *BaseHandler, service PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{BaseHandler: base, service: service}
}

// Pending handles GET /purchase-orders/pending.
func (h *PurchaseOrderHandler) Pending(c *gin.Context) {
	orders, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	if orders == nil {
		orders = []*purchase_order.PurchaseOrder{}
	}
	h.OK(c, gin.H{"items": orders})
}

// Get handles GET /purchase-orders/:id.
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseID(c)
	if !ok {
		return
	}
	order, err := h.service.Get(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

