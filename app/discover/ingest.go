package discover

import (
	"log/slog"

	"github.com/datkv/itch-creators/app/scrape"
)

// Stats summarizes a discovery run. Creators counts distinct creators
// touched, Games the games registered.
type Stats struct {
	Creators int
	Games    int
	Errors   int
}

// Ingestor registers discovered games and the creators they belong to.
type Ingestor struct {
	creators CreatorStore
	games    GameStore
}

func NewIngestor(creators CreatorStore, games GameStore) *Ingestor {
	return &Ingestor{creators: creators, games: games}
}

// IngestGames upserts each discovered game under its creator. Entries whose
// creator cannot be derived from the URL are skipped with a warning; a
// single entry's failure never aborts the batch.
func (i *Ingestor) IngestGames(games []scrape.DiscoveredGame) Stats {
	stats := Stats{}
	creatorIDs := make(map[string]int64)

	for _, game := range games {
		if game.URL == "" {
			continue
		}
		if game.CreatorName == "" {
			slog.Warn("Skipping game without resolvable creator", "url", game.URL)
			continue
		}

		creatorID, ok := creatorIDs[game.CreatorName]
		if !ok {
			id, err := i.creators.UpsertCreator(game.CreatorName, scrape.ProfileURL(game.URL))
			if err != nil {
				slog.Error("Failed to upsert creator", "creator", game.CreatorName, "error", err)
				stats.Errors++
				continue
			}
			creatorID = id
			creatorIDs[game.CreatorName] = id
			stats.Creators++
		}

		if _, err := i.games.UpsertGame(&creatorID, scrape.GameSlug(game.URL), game); err != nil {
			slog.Error("Failed to upsert game", "game", game.Title, "url", game.URL, "error", err)
			stats.Errors++
			continue
		}
		stats.Games++
	}

	return stats
}
