package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/datkv/itch-creators/app/scrape"
)

// Poller fetches release feeds and normalizes their entries into
// discovered games.
type Poller struct {
	client *scrape.Client
	parser *gofeed.Parser
}

func NewPoller(client *scrape.Client) *Poller {
	return &Poller{
		client: client,
		parser: gofeed.NewParser(),
	}
}

// Poll fetches one feed and returns its entries as discovered games.
// Entries without a link or title are skipped, never fatal.
func (p *Poller) Poll(ctx context.Context, feedURL string) ([]scrape.DiscoveredGame, error) {
	body, err := p.client.Fetch(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := p.parser.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	games := make([]scrape.DiscoveredGame, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Link == "" || item.Title == "" {
			slog.Debug("Skipping malformed feed entry", "feed", feedURL)
			continue
		}

		game := scrape.DiscoveredGame{
			Title:       strings.TrimSpace(item.Title),
			URL:         item.Link,
			CreatorName: scrape.CreatorFromURL(item.Link),
			PublishDate: item.PublishedParsed,
		}

		games = append(games, game)
	}

	return games, nil
}

// PollAll polls every feed and merges the results, deduplicating by game
// URL. A failing feed is logged and skipped so one bad feed cannot starve
// the others.
func (p *Poller) PollAll(ctx context.Context, feedURLs []string) []scrape.DiscoveredGame {
	var all []scrape.DiscoveredGame
	seen := make(map[string]bool)

	for _, feedURL := range feedURLs {
		games, err := p.Poll(ctx, feedURL)
		if err != nil {
			slog.Error("Failed to poll feed", "feed", feedURL, "error", err)
			continue
		}

		for _, game := range games {
			if seen[game.URL] {
				continue
			}
			seen[game.URL] = true
			all = append(all, game)
		}
	}

	return all
}
