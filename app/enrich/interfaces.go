package enrich

import (
	"context"

	"github.com/datkv/itch-creators/app/database"
	"github.com/datkv/itch-creators/app/scrape"
)

// Fetcher retrieves a page body for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// GameParser turns a game page into structured details.
type GameParser interface {
	Run(html string) (*scrape.GameDetails, error)
}

// GameStore is the slice of the observation store the enricher reads
// candidates from and writes results to.
type GameStore interface {
	GetEnrichmentCandidates(limit int) ([]database.Game, error)
	GetStaleGames(staleDays int, limit int) ([]database.Game, error)
	UpdateGameRatings(gameID int64, details *scrape.GameDetails) error
	MarkRatingsHidden(gameID int64, details *scrape.GameDetails, cooldownDays int) error
	MarkGameFailed(gameID int64, cooldownDays int) error
}
