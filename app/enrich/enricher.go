package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/datkv/itch-creators/app/database"
)

// Stats summarizes an enrichment batch.
type Stats struct {
	Processed int
	Errors    int
}

// Enricher fetches game pages and records the resulting rating
// observations. Pages without a visible rating are recorded as hidden with
// a cooldown; fetch and parse failures set a retry cooldown and never touch
// rating data.
type Enricher struct {
	fetcher Fetcher
	parser  GameParser
	games   GameStore

	failureCooldownDays int
	hiddenCooldownDays  int
}

func NewEnricher(fetcher Fetcher, parser GameParser, games GameStore, failureCooldownDays int, hiddenCooldownDays int) *Enricher {
	return &Enricher{
		fetcher:             fetcher,
		parser:              parser,
		games:               games,
		failureCooldownDays: failureCooldownDays,
		hiddenCooldownDays:  hiddenCooldownDays,
	}
}

// EnrichGame fetches and classifies a single game page.
func (e *Enricher) EnrichGame(ctx context.Context, game database.Game) error {
	html, err := e.fetcher.Fetch(ctx, game.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch game page: %w", err)
	}

	details, err := e.parser.Run(html)
	if err != nil {
		return fmt.Errorf("failed to parse game page: %w", err)
	}

	if details.Rating == nil {
		if err := e.games.MarkRatingsHidden(game.ID, details, e.hiddenCooldownDays); err != nil {
			return fmt.Errorf("failed to mark ratings hidden: %w", err)
		}
		return nil
	}

	if err := e.games.UpdateGameRatings(game.ID, details); err != nil {
		return fmt.Errorf("failed to update game ratings: %w", err)
	}

	return nil
}

// EnrichPending processes games that were never fully enriched or whose
// cooldown has expired, up to limit. One game's failure never aborts the
// batch.
func (e *Enricher) EnrichPending(ctx context.Context, limit int) (Stats, error) {
	games, err := e.games.GetEnrichmentCandidates(limit)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to select enrichment candidates: %w", err)
	}

	return e.enrichBatch(ctx, games), nil
}

// RefreshStale re-enriches games whose last scrape is older than staleDays,
// independent of the never-scraped backlog.
func (e *Enricher) RefreshStale(ctx context.Context, staleDays int, limit int) (Stats, error) {
	games, err := e.games.GetStaleGames(staleDays, limit)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to select stale games: %w", err)
	}

	return e.enrichBatch(ctx, games), nil
}

func (e *Enricher) enrichBatch(ctx context.Context, games []database.Game) Stats {
	stats := Stats{}

	for _, game := range games {
		select {
		case <-ctx.Done():
			// Unprocessed rows simply stay in the candidate pool
			return stats
		default:
		}

		if err := e.EnrichGame(ctx, game); err != nil {
			if ctx.Err() != nil {
				return stats
			}

			slog.Error("Failed to enrich game", "game", game.Title, "url", game.URL, "error", err)
			stats.Errors++

			if err := e.games.MarkGameFailed(game.ID, e.failureCooldownDays); err != nil {
				slog.Error("Failed to record failure cooldown", "game", game.Title, "error", err)
			}
			continue
		}

		stats.Processed++
	}

	return stats
}
