package discover

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/datkv/itch-creators/app/scrape"
	"github.com/datkv/itch-creators/app/sources"
)

// BrowseCrawler walks catalog browse listings and registers the games and
// creators they surface.
type BrowseCrawler struct {
	fetcher  Fetcher
	parser   BrowseParser
	ingestor *Ingestor
}

func NewBrowseCrawler(fetcher Fetcher, parser BrowseParser, ingestor *Ingestor) *BrowseCrawler {
	return &BrowseCrawler{
		fetcher:  fetcher,
		parser:   parser,
		ingestor: ingestor,
	}
}

// CrawlSource walks one browse listing up to its page cap. A page failure
// ends the walk but keeps what earlier pages produced.
func (c *BrowseCrawler) CrawlSource(ctx context.Context, source sources.BrowsePage) ([]scrape.DiscoveredGame, error) {
	var games []scrape.DiscoveredGame
	seen := make(map[string]bool)

	pageURL := source.URL
	for page := 0; pageURL != "" && page < source.MaxPages; page++ {
		html, err := c.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return games, fmt.Errorf("failed to fetch browse page: %w", err)
		}

		parsed, err := c.parser.Run(html, pageURL)
		if err != nil {
			return games, fmt.Errorf("failed to parse browse page: %w", err)
		}

		for _, game := range parsed.Games {
			if seen[game.URL] {
				continue
			}
			seen[game.URL] = true
			games = append(games, game)
		}

		pageURL = parsed.NextPage
		slog.Debug("Crawled browse page", "source", source.Name, "page", page+1, "games", len(games))
	}

	return games, nil
}

// CrawlAll walks every configured browse source and ingests the combined,
// deduplicated result. A failing source keeps its partial results and never
// blocks the others.
func (c *BrowseCrawler) CrawlAll(ctx context.Context, pages []sources.BrowsePage) (Stats, error) {
	var all []scrape.DiscoveredGame
	seen := make(map[string]bool)
	failures := 0

	for _, source := range pages {
		if ctx.Err() != nil {
			break
		}

		games, err := c.CrawlSource(ctx, source)
		if err != nil && ctx.Err() == nil {
			slog.Warn("Browse crawl failed", "source", source.Name, "error", err)
			failures++
		}

		for _, game := range games {
			if seen[game.URL] {
				continue
			}
			seen[game.URL] = true
			all = append(all, game)
		}
	}

	stats := c.ingestor.IngestGames(all)
	stats.Errors += failures

	slog.Info("Browse crawl complete",
		"sources", len(pages), "creators", stats.Creators, "games", stats.Games, "errors", stats.Errors)

	return stats, nil
}
