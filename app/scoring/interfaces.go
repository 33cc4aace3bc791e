package scoring

import "github.com/datkv/itch-creators/app/database"

// CreatorSource enumerates the creators eligible for scoring.
type CreatorSource interface {
	GetAllCreatorIDs() ([]int64, error)
}

// AggregateSource supplies the per-creator sufficient statistics consumed
// by the model.
type AggregateSource interface {
	AggregateForCreator(creatorID int64) (*database.CreatorAggregate, error)
}

// ScoreSink receives finished scores, one per creator.
type ScoreSink interface {
	Publish(score database.CreatorScore) error
}
