package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/datkv/itch-creators/app/discover"
)

type BackfillCreatorsTask struct {
	Task
	backfiller *discover.Backfiller
	limit      int
}

func NewBackfillCreatorsTask(backfiller *discover.Backfiller, limit int) *BackfillCreatorsTask {
	return &BackfillCreatorsTask{
		Task:       NewTask(TaskTypeBackfillCreators),
		backfiller: backfiller,
		limit:      limit,
	}
}

func (t *BackfillCreatorsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	stats, err := t.backfiller.BackfillAll(ctx, t.limit)
	if err != nil {
		return fmt.Errorf("failed to backfill creators: %w", err)
	}

	slog.Info("Task completed",
		"type", "BackfillCreators",
		"duration", t.GetDuration(),
		"creators", stats.Creators,
		"games", stats.Games,
		"errors", stats.Errors)

	return nil
}
