package services

import (
	"context"
	"log/slog"
	"time"
)

// StatusUpdater is the part of EventService the scheduler drives.
type StatusUpdater interface {
	AutoUpdateEventStatuses(ctx context.Context) error
}

// RunStatusScheduler обновляет статусы событий сразу и затем каждые interval,
// пока ctx не отменен. Ошибки прогона логируются и не останавливают планировщик.
func RunStatusScheduler(ctx context.Context, updater StatusUpdater, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("event status scheduler started", slog.Duration("interval", interval))

	if err := updater.AutoUpdateEventStatuses(ctx); err != nil {
		logger.Error("scheduler: initial run failed", slog.Any("error", err))
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("event status scheduler stopped")
			return
		case <-ticker.C:
			if err := updater.AutoUpdateEventStatuses(ctx); err != nil {
				logger.Error("scheduler: periodic run failed", slog.Any("error", err))
			}
		}
	}
}
