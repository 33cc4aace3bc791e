package discover

import (
	"context"

	"github.com/datkv/itch-creators/app/database"
	"github.com/datkv/itch-creators/app/scrape"
)

// CreatorStore is the creator persistence surface discovery relies on.
type CreatorStore interface {
	UpsertCreator(name, profileURL string) (int64, error)
	GetCreatorByName(name string) (*database.Creator, error)
	GetUnbackfilledCreators(limit int) ([]database.Creator, error)
	MarkCreatorBackfilled(creatorID int64) error
}

// GameStore registers discovered games.
type GameStore interface {
	UpsertGame(creatorID *int64, platformID string, game scrape.DiscoveredGame) (int64, error)
}

// Fetcher retrieves pages subject to the shared politeness delay.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ProfileParser parses a creator profile page.
type ProfileParser interface {
	Run(html string, baseURL string) (*scrape.ProfilePage, error)
}

// BrowseParser parses a catalog browse page.
type BrowseParser interface {
	Run(html string, baseURL string) (*scrape.BrowsePage, error)
}

// FeedSource produces discovered games from the configured release feeds.
type FeedSource interface {
	PollAll(ctx context.Context, feedURLs []string) []scrape.DiscoveredGame
}
