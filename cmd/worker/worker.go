package main

import (
	"context"
	"time"

	"backoffice/pkg/logger"
)

// BatchProcessor processes one batch of due outbox messages.
type BatchProcessor interface {
	ProcessBatch(ctx context.Context) (int, error)
}

// Cleaner removes expired records.
type Cleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// Config tunes the worker loops.
type Config struct {
	PollInterval    time.Duration
	CleanupInterval time.Duration
}

// Worker drives the outbox relay and periodic cleanup.
type Worker struct {
	relay   BatchProcessor
	cleaner Cleaner
	log     *logger.Logger
	cfg     Config
}

// NewWorker creates a new worker.
func NewWorker(relay BatchProcessor, cleaner Cleaner, log *logger.Logger, cfg Config) *Worker {
	return &Worker{
		relay:   relay,
		cleaner: cleaner,
		log:     log.WithComponent("worker"),
		cfg:     cfg,
	}
}

// Run polls until ctx is cancelled. A full batch is followed immediately by another poll.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(w.cfg.CleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.drain(ctx)
		case <-cleanupTicker.C:
			w.cleanup(ctx)
		}
	}
}

// drain processes batches until one comes back empty or fails.
func (w *Worker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		n, err := w.relay.ProcessBatch(ctx)
		if err != nil {
			w.log.Errorw("outbox batch failed", "error", err)
			return
		}
		if n == 0 {
			return
		}
		w.log.Debugw("processed outbox batch", "count", n)
	}
}

func (w *Worker) cleanup(ctx context.Context) {
	n, err := w.cleaner.CleanupExpired(ctx)
	if err != nil {
		w.log.Warnw("idempotency cleanup failed", "error", err)
		return
	}
	if n > 0 {
		w.log.Infow("cleaned up idempotency keys", "count", n)
	}
}
