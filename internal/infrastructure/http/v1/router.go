// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"backoffice/internal/infrastructure/http/v1/handlers"
	"backoffice/internal/infrastructure/http/v1/middleware"
	"backoffice/internal/metadata"
	"backoffice/pkg/logger"
)

// Permissions checked by the API. Admin tokens bypass them.
const (
	PermReceiptRead       = "goods_receipt:read"
	PermReceiptCreate     = "goods_receipt:create"
	PermReceiptUpdate     = "goods_receipt:update"
	PermPurchaseOrderRead = "purchase_order:read"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// DB is pinged by the readiness probe
	DB handlers.Pinger

	// Version is reported by the liveness probe
	Version string

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	GoodsReceipts  handlers.GoodsReceiptService
	PurchaseOrders handlers.PurchaseOrderService

	// Audit serves receipt history; optional
	Audit handlers.AuditReader

	// Stock serves receipt stock movements; optional
	Stock handlers.StockReader

	// Idempotency enables X-Idempotency-Key handling on mutating routes; optional
	Idempotency middleware.IdempotencyStore

	// Schemas stores published metadata schemas
	Schemas *metadata.Registry
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))
	if cfg.Idempotency != nil {
		v1.Use(middleware.Idempotency(cfg.Idempotency))
	}

	base := handlers.NewBaseHandler()
	registerGoodsReceiptRoutes(v1, base, cfg)
	registerPurchaseOrderRoutes(v1, base, cfg)
	registerSchemaRoutes(v1, base, cfg)

	return router
}

func registerGoodsReceiptRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewGoodsReceiptHandler(base, cfg.GoodsReceipts, cfg.Audit, cfg.Stock)

	g := rg.Group("/goods-receipts")
	g.GET("", middleware.RequirePermission(PermReceiptRead), h.List)
	g.POST("", middleware.RequirePermission(PermReceiptCreate), h.Create)
	g.GET("/:id", middleware.RequirePermission(PermReceiptRead), h.Get)
	g.PUT("/:id", middleware.RequirePermission(PermReceiptUpdate), h.Update)
	g.GET("/:id/history", middleware.RequirePermission(PermReceiptRead), h.History)
	g.GET("/:id/movements", middleware.RequirePermission(PermReceiptRead), h.Movements)
}

func registerPurchaseOrderRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewPurchaseOrderHandler(base, cfg.PurchaseOrders)

	g := rg.Group("/purchase-orders")
	g.GET("/pending", middleware.RequirePermission(PermPurchaseOrderRead), h.Pending)
	g.GET("/:id", middleware.RequirePermission(PermPurchaseOrderRead), h.Get)
}

func registerSchemaRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Schemas == nil {
		return
	}
	h := handlers.NewSchemaHandler(base, cfg.Schemas)

	g := rg.Group("/schema")
	g.GET("", h.List)
	g.GET("/:name", h.Get)
}
