package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/datkv/itch-creators/app/scoring"
)

type ScoreCreatorsTask struct {
	Task
	scorer *scoring.Scorer
}

func NewScoreCreatorsTask(scorer *scoring.Scorer) *ScoreCreatorsTask {
	return &ScoreCreatorsTask{
		Task:   NewTask(TaskTypeScoreCreators),
		scorer: scorer,
	}
}

func (t *ScoreCreatorsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	stats, err := t.scorer.ScoreAll()
	if err != nil {
		return fmt.Errorf("failed to score creators: %w", err)
	}

	slog.Info("Task completed",
		"type", "ScoreCreators",
		"duration", t.GetDuration(),
		"scored", stats.Scored,
		"errors", stats.Errors)

	return nil
}
