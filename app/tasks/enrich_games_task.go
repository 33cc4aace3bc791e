package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/datkv/itch-creators/app/enrich"
)

type EnrichGamesTask struct {
	Task
	enricher *enrich.Enricher
	limit    int
}

func NewEnrichGamesTask(enricher *enrich.Enricher, limit int) *EnrichGamesTask {
	return &EnrichGamesTask{
		Task:     NewTask(TaskTypeEnrichGames),
		enricher: enricher,
		limit:    limit,
	}
}

func (t *EnrichGamesTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	stats, err := t.enricher.EnrichPending(ctx, t.limit)
	if err != nil {
		return fmt.Errorf("failed to enrich games: %w", err)
	}

	slog.Info("Task completed",
		"type", "EnrichGames",
		"duration", t.GetDuration(),
		"processed", stats.Processed,
		"errors", stats.Errors)

	return nil
}
