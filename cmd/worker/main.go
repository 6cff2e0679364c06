// Package main is the entry point for the back-office background worker.
// It relays the transactional outbox (ledger posting retries) and prunes idempotency keys.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"backoffice/internal/infrastructure/ledger"
	"backoffice/internal/infrastructure/storage/postgres"
	"backoffice/internal/infrastructure/storage/postgres/document_repo"
	"backoffice/pkg/logger"
)

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

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	log.Info("starting backoffice worker")

	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	poolCfg.AppName = "backoffice-worker"
	poolCfg.MinConns = 1
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool, postgres.DefaultTxOptions())

	poster := ledger.NewPoster(txm, document_repo.NewPurchaseInvoiceRepo(txm), ledger.NewJournalRepo(txm), ledgerAccounts())
	relay := postgres.NewOutboxRelay(txm, getEnvInt("WORKER_BATCH_SIZE", 50), ledger.NewRetryHandler(poster))

	worker := NewWorker(relay, postgres.NewIdempotencyStore(txm, 0), log, Config{
		PollInterval:    getEnvDuration("WORKER_POLL_INTERVAL", 5*time.Second),
		CleanupInterval: getEnvDuration("WORKER_CLEANUP_INTERVAL", time.Hour),
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	postgres.LogPoolStats(ctx, pool)
	log.Info("worker stopped")
}
