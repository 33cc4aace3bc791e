package discover

import (
	"context"
	"log/slog"
)

// FeedDiscovery polls the configured release feeds and registers what they
// announce.
type FeedDiscovery struct {
	feeds    FeedSource
	ingestor *Ingestor
	feedURLs []string
}

func NewFeedDiscovery(feeds FeedSource, ingestor *Ingestor, feedURLs []string) *FeedDiscovery {
	return &FeedDiscovery{
		feeds:    feeds,
		ingestor: ingestor,
		feedURLs: feedURLs,
	}
}

// Discover polls every configured feed and ingests the merged entries.
func (d *FeedDiscovery) Discover(ctx context.Context) (Stats, error) {
	games := d.feeds.PollAll(ctx, d.feedURLs)
	stats := d.ingestor.IngestGames(games)

	slog.Info("Feed poll complete",
		"entries", len(games), "creators", stats.Creators, "games", stats.Games, "errors", stats.Errors)

	return stats, nil
}
