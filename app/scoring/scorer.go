package scoring

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/datkv/itch-creators/app/database"
)

// Stats summarizes a scoring pass.
type Stats struct {
	Scored int
	Errors int
}

type Scorer struct {
	creators CreatorSource
	games    AggregateSource
	sink     ScoreSink
	strategy Strategy
}

func NewScorer(creators CreatorSource, games AggregateSource, sink ScoreSink, strategy Strategy) *Scorer {
	return &Scorer{
		creators: creators,
		games:    games,
		sink:     sink,
		strategy: strategy,
	}
}

// ScoreCreator derives a creator's score from the aggregate statistics of
// its games. The stored average is the rating-count-weighted mean across
// rated games, or GlobalAverage when nothing is rated yet.
func (s *Scorer) ScoreCreator(creatorID int64) (*database.CreatorScore, error) {
	agg, err := s.games.AggregateForCreator(creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate games for creator %d: %w", creatorID, err)
	}

	score := &database.CreatorScore{CreatorID: creatorID}
	if agg == nil || agg.TotalGames == 0 {
		return score, nil
	}

	avgRating := float64(GlobalAverage)
	if agg.TotalRatings > 0 {
		avgRating = agg.WeightedRatingSum / float64(agg.TotalRatings)
	}

	score.GameCount = agg.TotalGames
	score.TotalRatings = int(agg.TotalRatings)
	score.AvgRating = math.Round(avgRating*100) / 100
	score.Score = Score(avgRating, agg.TotalRatings, agg.TotalGames, s.strategy)

	return score, nil
}

// ScoreAll recomputes every creator's score. Creators are scored
// independently; a failure is logged and counted without aborting the pass.
func (s *Scorer) ScoreAll() (Stats, error) {
	ids, err := s.creators.GetAllCreatorIDs()
	if err != nil {
		return Stats{}, fmt.Errorf("failed to list creators: %w", err)
	}

	stats := Stats{}
	for _, id := range ids {
		score, err := s.ScoreCreator(id)
		if err != nil {
			slog.Error("Failed to score creator", "creator_id", id, "error", err)
			stats.Errors++
			continue
		}

		if err := s.sink.Publish(*score); err != nil {
			slog.Error("Failed to store creator score", "creator_id", id, "error", err)
			stats.Errors++
			continue
		}

		stats.Scored++
	}

	return stats, nil
}
