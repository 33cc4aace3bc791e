package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/datkv/itch-creators/app/enrich"
)

type RefreshStaleTask struct {
	Task
	enricher  *enrich.Enricher
	staleDays int
	limit     int
}

func NewRefreshStaleTask(enricher *enrich.Enricher, staleDays, limit int) *RefreshStaleTask {
	return &RefreshStaleTask{
		Task:      NewTask(TaskTypeRefreshStale),
		enricher:  enricher,
		staleDays: staleDays,
		limit:     limit,
	}
}

func (t *RefreshStaleTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	stats, err := t.enricher.RefreshStale(ctx, t.staleDays, t.limit)
	if err != nil {
		return fmt.Errorf("failed to refresh stale games: %w", err)
	}

	slog.Info("Task completed",
		"type", "RefreshStale",
		"duration", t.GetDuration(),
		"processed", stats.Processed,
		"errors", stats.Errors)

	return nil
}
