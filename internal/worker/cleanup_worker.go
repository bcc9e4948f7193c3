// Package worker hosts background jobs that run beside the HTTP server.
package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/marketplace-service/internal/cache"
	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/repository"
)

// CleanupWorker expires stale pickup tokens: REQUESTED rows older than the
// configured window are dropped so abandoned requests free the slot.
type CleanupWorker struct {
	tokens repository.TokenRepository
	cache  *cache.Cache
	logger *zap.Logger
	cfg    config.CleanupConfig
	cron   *cron.Cron
}

// NewCleanupWorker constructs the worker.
func NewCleanupWorker(tokens repository.TokenRepository, c *cache.Cache, logger *zap.Logger, cfg config.CleanupConfig) *CleanupWorker {
	return &CleanupWorker{
		tokens: tokens,
		cache:  c,
		logger: logger,
		cfg:    cfg,
		cron:   cron.New(),
	}
}

// Start schedules the sweep. Returns an error only for a bad schedule spec.
func (w *CleanupWorker) Start() error {
	if _, err := w.cron.AddFunc(w.cfg.Schedule, w.Sweep); err != nil {
		return err
	}
	w.cron.Start()
	w.logger.Info("token cleanup scheduled", zap.String("schedule", w.cfg.Schedule))
	return nil
}

// Stop halts the schedule and waits for a running sweep.
func (w *CleanupWorker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

// Sweep deletes expired REQUESTED tokens and, when anything went away,
// clears the token cache families the rows backed.
func (w *CleanupWorker) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-w.cfg.MaxAge)
	count, err := w.tokens.DeleteExpiredRequested(ctx, cutoff)
	if err != nil {
		w.logger.Error("token cleanup failed", zap.Error(err))
		return
	}
	if count == 0 {
		return
	}

	w.logger.Info("expired tokens removed", zap.Int64("count", count))
	// The swept rows may back any cached token view.
	w.cache.InvalidatePattern(ctx, "tokens:*")
	w.cache.InvalidatePattern(ctx, "token:*")
}
