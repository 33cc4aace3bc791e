package discover

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/datkv/itch-creators/app/database"
	"github.com/datkv/itch-creators/app/scrape"
)

// maxProfilePages bounds the pagination walk per creator so one enormous
// catalog cannot monopolize a backfill run.
const maxProfilePages = 20

// Backfiller walks unbackfilled creators' profiles and registers their
// full game history.
type Backfiller struct {
	fetcher  Fetcher
	parser   ProfileParser
	creators CreatorStore
	games    GameStore
}

func NewBackfiller(fetcher Fetcher, parser ProfileParser, creators CreatorStore, games GameStore) *Backfiller {
	return &Backfiller{
		fetcher:  fetcher,
		parser:   parser,
		creators: creators,
		games:    games,
	}
}

// BackfillCreator walks one creator's profile pages and upserts every game
// found. The creator is marked backfilled only after the walk succeeds, so
// a failed walk is retried on a later run.
func (b *Backfiller) BackfillCreator(ctx context.Context, creator database.Creator) (int, error) {
	games := 0
	pageURL := creator.ProfileURL

	for page := 0; pageURL != "" && page < maxProfilePages; page++ {
		html, err := b.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return games, fmt.Errorf("failed to fetch profile page: %w", err)
		}

		parsed, err := b.parser.Run(html, pageURL)
		if err != nil {
			return games, fmt.Errorf("failed to parse profile page: %w", err)
		}

		for _, game := range parsed.Games {
			game.CreatorName = creator.Name
			if _, err := b.games.UpsertGame(&creator.ID, scrape.GameSlug(game.URL), game); err != nil {
				return games, fmt.Errorf("failed to upsert game %s: %w", game.URL, err)
			}
			games++
		}

		pageURL = parsed.NextPage
	}

	if err := b.creators.MarkCreatorBackfilled(creator.ID); err != nil {
		return games, fmt.Errorf("failed to mark creator backfilled: %w", err)
	}

	return games, nil
}

// BackfillAll processes unbackfilled creators up to limit. One creator's
// failure never aborts the batch.
func (b *Backfiller) BackfillAll(ctx context.Context, limit int) (Stats, error) {
	creators, err := b.creators.GetUnbackfilledCreators(limit)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to select unbackfilled creators: %w", err)
	}

	stats := Stats{}
	for _, creator := range creators {
		select {
		case <-ctx.Done():
			return stats, nil
		default:
		}

		games, err := b.BackfillCreator(ctx, creator)
		if err != nil {
			if ctx.Err() != nil {
				return stats, nil
			}
			slog.Error("Failed to backfill creator", "creator", creator.Name, "error", err)
			stats.Errors++
			continue
		}

		stats.Creators++
		stats.Games += games
		slog.Info("Backfilled creator", "creator", creator.Name, "games", games)
	}

	return stats, nil
}
