package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/datkv/itch-creators/app/discover"
)

type PollFeedsTask struct {
	Task
	discovery *discover.FeedDiscovery
}

func NewPollFeedsTask(discovery *discover.FeedDiscovery) *PollFeedsTask {
	return &PollFeedsTask{
		Task:      NewTask(TaskTypePollFeeds),
		discovery: discovery,
	}
}

func (t *PollFeedsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	stats, err := t.discovery.Discover(ctx)
	if err != nil {
		return fmt.Errorf("failed to poll feeds: %w", err)
	}

	slog.Info("Task completed",
		"type", "PollFeeds",
		"duration", t.GetDuration(),
		"creators", stats.Creators,
		"games", stats.Games,
		"errors", stats.Errors)

	return nil
}
