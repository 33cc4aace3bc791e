package ranking

import (
	"fmt"
	"log/slog"

	"github.com/datkv/itch-creators/app/database"
)

// Materializer persists recomputed creator scores and serves the ranked
// leaderboard.
type Materializer struct {
	store ScoreStore
	cache ScoreCache
}

// NewMaterializer builds a materializer. cache may be nil, leaving all
// reads on the database.
func NewMaterializer(store ScoreStore, cache ScoreCache) *Materializer {
	return &Materializer{store: store, cache: cache}
}

// Publish stores a recomputed creator score. The cache mirror is best
// effort: a mirror failure is logged and never fails the scoring pass.
func (m *Materializer) Publish(score database.CreatorScore) error {
	if err := m.store.UpsertScore(score); err != nil {
		return fmt.Errorf("failed to store creator score: %w", err)
	}

	if m.cache != nil {
		if err := m.cache.Add(score.CreatorID, score.Score); err != nil {
			slog.Warn("Failed to mirror creator score", "creator_id", score.CreatorID, "error", err)
		}
	}

	return nil
}

// Top returns a leaderboard page in descending score order. The cache
// serves the ranking when available; any cache problem falls back to the
// database.
func (m *Materializer) Top(limit, offset int) ([]database.CreatorScore, error) {
	if m.cache != nil {
		scores, err := m.topFromCache(limit, offset)
		if err == nil {
			return scores, nil
		}
		slog.Warn("Leaderboard cache read failed, using database", "error", err)
	}

	return m.store.GetTopCreators(limit, offset)
}

func (m *Materializer) topFromCache(limit, offset int) ([]database.CreatorScore, error) {
	ids, err := m.cache.TopIDs(limit, offset)
	if err != nil {
		return nil, err
	}

	scores := make([]database.CreatorScore, 0, len(ids))
	for _, id := range ids {
		score, err := m.store.GetScoreByCreator(id)
		if err != nil {
			return nil, err
		}
		if score == nil {
			// Mirror entry without a backing row, likely mid-recompute
			continue
		}
		scores = append(scores, *score)
	}

	return scores, nil
}
