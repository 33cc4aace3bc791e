package ranking

import "github.com/datkv/itch-creators/app/database"

// ScoreStore is the persistent ranking surface. Postgres is always the
// source of truth; the cache only mirrors it.
type ScoreStore interface {
	UpsertScore(score database.CreatorScore) error
	GetTopCreators(limit, offset int) ([]database.CreatorScore, error)
	GetScoreByCreator(creatorID int64) (*database.CreatorScore, error)
}

// ScoreCache mirrors creator scores into a sorted structure for cheap
// ranked reads.
type ScoreCache interface {
	Add(creatorID int64, score float64) error
	TopIDs(limit, offset int) ([]int64, error)
	Close() error
}
