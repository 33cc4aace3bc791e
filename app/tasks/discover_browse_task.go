package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/datkv/itch-creators/app/discover"
	"github.com/datkv/itch-creators/app/sources"
)

type DiscoverBrowseTask struct {
	Task
	crawler *discover.BrowseCrawler
	pages   []sources.BrowsePage
}

func NewDiscoverBrowseTask(crawler *discover.BrowseCrawler, pages []sources.BrowsePage) *DiscoverBrowseTask {
	return &DiscoverBrowseTask{
		Task:    NewTask(TaskTypeDiscoverBrowse),
		crawler: crawler,
		pages:   pages,
	}
}

func (t *DiscoverBrowseTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	stats, err := t.crawler.CrawlAll(ctx, t.pages)
	if err != nil {
		return fmt.Errorf("failed to crawl browse pages: %w", err)
	}

	slog.Info("Task completed",
		"type", "DiscoverBrowse",
		"duration", t.GetDuration(),
		"creators", stats.Creators,
		"games", stats.Games,
		"errors", stats.Errors)

	return nil
}
