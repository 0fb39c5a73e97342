package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/dental-api/internal/repository"
	"github.com/jwalitptl/dental-api/pkg/logger"
	"github.com/jwalitptl/dental-api/pkg/metrics"
)

// OutboxCleanupWorker removes processed outbox events older than the retention window
type OutboxCleanupWorker struct {
	repo      repository.OutboxRepository
	retention time.Duration
	interval  time.Duration
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

func NewOutboxCleanupWorker(repo repository.OutboxRepository, retention, interval time.Duration, logger *logger.Logger, metrics *metrics.Metrics) *OutboxCleanupWorker {
	return &OutboxCleanupWorker{
		repo:      repo,
		retention: retention,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Cleanup(ctx, time.Now())
		}
	}
}

func (w *OutboxCleanupWorker) Cleanup(ctx context.Context, now time.Time) int64 {
	deleted, err := w.repo.DeleteProcessedBefore(ctx, now.Add(-w.retention))
	if err != nil {
		w.logger.Error(err, "Failed to clean up outbox events")
		return 0
	}
	if deleted > 0 {
		w.metrics.OutboxCleanedUp.Add(float64(deleted))
		w.logger.Info("Cleaned up outbox events", "deleted", deleted)
	}
	return deleted
}
