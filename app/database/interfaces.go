package database

import (
	"github.com/datkv/itch-creators/app/scrape"
)

type CreatorRepository interface {
	UpsertCreator(name, profileURL string) (int64, error)
	GetCreatorByName(name string) (*Creator, error)
	GetUnbackfilledCreators(limit int) ([]Creator, error)
	MarkCreatorBackfilled(creatorID int64) error
	GetAllCreatorIDs() ([]int64, error)
	GetCreatorCount() (int, error)
}

type GameRepository interface {
	UpsertGame(creatorID *int64, platformID string, game scrape.DiscoveredGame) (int64, error)
	GetGamesByCreator(creatorID int64) ([]Game, error)
	GetEnrichmentCandidates(limit int) ([]Game, error)
	GetStaleGames(staleDays, limit int) ([]Game, error)

	UpdateGameRatings(gameID int64, details *scrape.GameDetails) error
	MarkRatingsHidden(gameID int64, details *scrape.GameDetails, cooldownDays int) error
	MarkGameFailed(gameID int64, cooldownDays int) error

	AggregateForCreator(creatorID int64) (*CreatorAggregate, error)
	GetGameCount() (int, error)
	GetEnrichedGameCount() (int, error)
}

type ScoreRepository interface {
	UpsertScore(score CreatorScore) error
	GetTopCreators(limit, offset int) ([]CreatorScore, error)
	GetScoreByCreator(creatorID int64) (*CreatorScore, error)
	GetScoredCreatorCount() (int, error)
}
