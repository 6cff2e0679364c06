// Package main is the entry point for the back-office API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"backoffice/internal/core/id"
	"backoffice/internal/domain/auth"
	"backoffice/internal/domain/documents/goods_receipt"
	"backoffice/internal/domain/documents/purchase_order"
	"backoffice/internal/domain/registers/stock"
	v1 "backoffice/internal/infrastructure/http/v1"
	"backoffice/internal/infrastructure/ledger"
	"backoffice/internal/infrastructure/storage/postgres"
	"backoffice/internal/infrastructure/storage/postgres/catalog_repo"
	"backoffice/internal/infrastructure/storage/postgres/document_repo"
	"backoffice/internal/infrastructure/storage/postgres/register_repo"
	"backoffice/pkg/logger"
	"backoffice/pkg/numerator"
)

const version = "0.1.0"

func main() {
	loadDotEnv()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "production") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting backoffice server", "version", version)

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(mustEnv("DATABASE_URL")))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txOpts := postgres.DefaultTxOptions()
	intakeCfg := intakeConfig()
	txOpts.StatementTimeout = intakeCfg.TxTimeout
	txOpts.LockTimeout = intakeCfg.LockTimeout
	txm := postgres.NewTxManager(pool, txOpts)

	// --- Repositories ---
	receiptRepo := document_repo.NewGoodsReceiptRepo(txm)
	invoiceRepo := document_repo.NewPurchaseInvoiceRepo(txm)
	orderRepo := document_repo.NewPurchaseOrderRepo(txm)
	productRepo := catalog_repo.NewProductRepo(txm)

	numbers := numerator.NewWithResolver(func(ctx context.Context) numerator.Querier {
		return txm.GetQuerier(ctx)
	})

	// --- Ledger ---
	poster := ledger.NewPoster(txm, invoiceRepo, ledger.NewJournalRepo(txm), ledgerAccounts())
	retryQueue := ledger.NewRetryQueue(postgres.NewOutboxPublisher(txm))

	// --- Services ---
	orders := purchase_order.NewService(orderRepo)
	stockRegister := stock.NewService(register_repo.NewStockRepo(txm))

	receipts, err := goods_receipt.NewService(goods_receipt.Deps{
		Repo:      receiptRepo,
		Catalog:   productRepo,
		Orders:    orders,
		Invoices:  invoiceRepo,
		Numerator: numbers,
		TxManager: txm,
		Ledger:    poster,
		Queue:     retryQueue,
		Stock:     stockRegister,
	}, intakeCfg)
	if err != nil {
		log.Fatalw("invalid goods receipt configuration", "error", err)
	}

	audit, err := postgres.NewAuditService(txm)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}
	receiptID := func(doc *goods_receipt.GoodsReceipt) id.ID { return doc.ID }
	receipts.Hooks().OnAfterCreate(postgres.AuditHook(audit, goods_receipt.EntityType, postgres.AuditActionCreate, receiptID))
	receipts.Hooks().OnAfterUpdate(postgres.AuditHook(audit, goods_receipt.EntityType, postgres.AuditActionUpdate, receiptID))

	// --- JWT Service ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))

	var idempotency *postgres.IdempotencyStore
	if getEnv("IDEMPOTENCY_ENABLED", "true") == "true" {
		idempotency = postgres.NewIdempotencyStore(txm, getEnvDuration("IDEMPOTENCY_TTL", 24*time.Hour))
	}

	// --- Router ---
	routerCfg := v1.RouterConfig{
		Logger:         log,
		DB:             pool,
		Version:        version,
		JWTValidator:   jwtService,
		GoodsReceipts:  receipts,
		PurchaseOrders: orders,
		Audit:          audit,
		Stock:          stockRegister,
		Schemas:        setupMetadataRegistry(),
	}
	if idempotency != nil {
		routerCfg.Idempotency = idempotency
	}
	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      gzhttp.GzipHandler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: intakeCfg.TxTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
