package database

import (
	"database/sql"
	"fmt"
)

// scoreRepository handles database operations for creator scores
type scoreRepository struct {
	db *DB
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(db *DB) ScoreRepository {
	return &scoreRepository{db: db}
}

// UpsertScore replaces a creator's score row as a whole. Scores are derived
// values and are always fully superseded, never merged field by field.
func (r *scoreRepository) UpsertScore(score CreatorScore) error {
	_, err := r.db.Exec(`
		INSERT INTO creator_scores (
			creator_id, game_count, total_ratings, avg_rating, score, calculated_at
		)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (creator_id) DO UPDATE SET
			game_count = EXCLUDED.game_count,
			total_ratings = EXCLUDED.total_ratings,
			avg_rating = EXCLUDED.avg_rating,
			score = EXCLUDED.score,
			calculated_at = EXCLUDED.calculated_at
	`, score.CreatorID, score.GameCount, score.TotalRatings, score.AvgRating, score.Score)

	if err != nil {
		return fmt.Errorf("failed to upsert score for creator %d: %w", score.CreatorID, err)
	}

	return nil
}

// GetTopCreators returns a leaderboard page ordered by descending score
func (r *scoreRepository) GetTopCreators(limit, offset int) ([]CreatorScore, error) {
	rows, err := r.db.Query(`
		SELECT s.creator_id, c.name, s.game_count, s.total_ratings,
		       s.avg_rating, s.score, s.calculated_at
		FROM creator_scores s
		JOIN creators c ON s.creator_id = c.id
		ORDER BY s.score DESC, s.creator_id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get top creators: %w", err)
	}
	defer rows.Close()

	var scores []CreatorScore
	for rows.Next() {
		var s CreatorScore
		err := rows.Scan(
			&s.CreatorID, &s.CreatorName, &s.GameCount, &s.TotalRatings,
			&s.AvgRating, &s.Score, &s.CalculatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		scores = append(scores, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating score rows: %w", err)
	}

	return scores, nil
}

// GetScoreByCreator retrieves a single creator's score row
func (r *scoreRepository) GetScoreByCreator(creatorID int64) (*CreatorScore, error) {
	var s CreatorScore
	err := r.db.QueryRow(`
		SELECT s.creator_id, c.name, s.game_count, s.total_ratings,
		       s.avg_rating, s.score, s.calculated_at
		FROM creator_scores s
		JOIN creators c ON s.creator_id = c.id
		WHERE s.creator_id = $1
	`, creatorID).Scan(
		&s.CreatorID, &s.CreatorName, &s.GameCount, &s.TotalRatings,
		&s.AvgRating, &s.Score, &s.CalculatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get score for creator %d: %w", creatorID, err)
	}

	return &s, nil
}

// GetScoredCreatorCount returns the number of creators with a computed score
func (r *scoreRepository) GetScoredCreatorCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM creator_scores").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get scored creator count: %w", err)
	}
	return count, nil
}
