package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/asset-service/internal/service"
)

// BackfillWorker periodically runs the cost snapshot backfill. The job is
// idempotent, so overlapping deployments or restarts are harmless.
type BackfillWorker struct {
	backfill *service.BackfillService
	interval time.Duration
	limit    int
	logger   *zap.Logger
	stop     chan struct{}
	done     chan struct{}
}

// NewBackfillWorker constructs the worker. A non-positive interval disables it.
func NewBackfillWorker(backfill *service.BackfillService, interval time.Duration, limit int, logger *zap.Logger) *BackfillWorker {
	return &BackfillWorker{
		backfill: backfill,
		interval: interval,
		limit:    limit,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the ticker loop.
func (w *BackfillWorker) Start(ctx context.Context) {
	if w.interval <= 0 || w.backfill == nil {
		close(w.done)
		return
	}
	go func() {
		defer close(w.done)
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				result, err := w.backfill.Run(ctx, w.limit)
				if err != nil {
					w.logger.Error("scheduled backfill failed", zap.Error(err))
					continue
				}
				if result.Updated > 0 {
					w.logger.Info("scheduled backfill applied snapshots",
						zap.Int("scanned", result.Scanned),
						zap.Int("updated", result.Updated),
					)
				}
			case <-w.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the loop and waits for it to exit.
func (w *BackfillWorker) Stop() {
	close(w.stop)
	<-w.done
}
