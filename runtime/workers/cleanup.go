package workers

import (
	"chat-pulse/repositories"
	"context"
	"log/slog"
	"time"
)

// CleanupWorker purges expired disappearing messages on an interval.
// Purged messages drop out of room history and of later volume reports.
type CleanupWorker struct {
	log        *slog.Logger
	repository repositories.IMessageRepository
	interval   time.Duration
}

func NewCleanupWorker(log *slog.Logger, repository repositories.IMessageRepository,
	interval time.Duration) *CleanupWorker {
	return &CleanupWorker{log: log, repository: repository, interval: interval}
}

func (w *CleanupWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			purged, err := w.repository.PurgeExpired(time.Now().UTC())
			if err != nil {
				w.log.Error("purge of disappearing messages failed", "error", err)
				continue
			}
			if purged > 0 {
				w.log.Info("purged disappearing messages", "count", purged)
			}
		}
	}
}
