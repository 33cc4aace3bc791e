package database

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/datkv/itch-creators/app/scrape"
)

// gameRepository handles database operations for games
type gameRepository struct {
	db *DB
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *DB) GameRepository {
	return &gameRepository{db: db}
}

const gameColumns = `
	g.id, g.creator_id, COALESCE(c.name, 'unknown'), g.platform_id,
	COALESCE(g.title, ''), g.url, g.publish_date, g.rating, g.rating_count,
	g.comment_count, COALESCE(g.description, ''), COALESCE(g.tags, '{}'),
	g.scraped_at, g.ratings_hidden, g.ratings_hidden_until, g.retry_after,
	g.created_at, g.updated_at`

func collectGames(rows *sql.Rows) ([]Game, error) {
	var games []Game
	for rows.Next() {
		var g Game
		err := rows.Scan(
			&g.ID, &g.CreatorID, &g.CreatorName, &g.PlatformID,
			&g.Title, &g.URL, &g.PublishDate, &g.Rating, &g.RatingCount,
			&g.CommentCount, &g.Description, pq.Array(&g.Tags),
			&g.ScrapedAt, &g.RatingsHidden, &g.RatingsHiddenUntil, &g.RetryAfter,
			&g.CreatedAt, &g.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game rows: %w", err)
	}

	return games, nil
}

// UpsertGame registers a discovered game, keyed on (creator_id, platform_id).
// Metadata follows first-writer-wins: existing non-empty title, description
// and publish_date are never replaced. Rating fields are owned by the
// enrichment updates and are not touched here, so a rediscovery never erases
// enrichment state.
func (r *gameRepository) UpsertGame(creatorID *int64, platformID string, game scrape.DiscoveredGame) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO games (creator_id, platform_id, title, url, publish_date)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		ON CONFLICT (creator_id, platform_id) DO UPDATE SET
			title = COALESCE(games.title, EXCLUDED.title),
			url = COALESCE(NULLIF(games.url, ''), EXCLUDED.url),
			publish_date = COALESCE(games.publish_date, EXCLUDED.publish_date),
			updated_at = NOW()
		RETURNING id
	`, creatorID, platformID, game.Title, game.URL, game.PublishDate).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to upsert game %s: %w", platformID, err)
	}

	return id, nil
}

// GetGamesByCreator returns all games attributed to a creator
func (r *gameRepository) GetGamesByCreator(creatorID int64) ([]Game, error) {
	rows, err := r.db.Query(`
		SELECT `+gameColumns+`
		FROM games g
		LEFT JOIN creators c ON g.creator_id = c.id
		WHERE g.creator_id = $1
		ORDER BY g.publish_date DESC NULLS LAST, g.created_at DESC
	`, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get games for creator %d: %w", creatorID, err)
	}
	defer rows.Close()

	return collectGames(rows)
}

// GetEnrichmentCandidates returns games needing a fetch: never scraped,
// ratings-hidden with an expired cooldown, or missing metadata. Games inside
// a failure or hidden cooldown window are excluded until it passes.
func (r *gameRepository) GetEnrichmentCandidates(limit int) ([]Game, error) {
	rows, err := r.db.Query(`
		SELECT `+gameColumns+`
		FROM games g
		LEFT JOIN creators c ON g.creator_id = c.id
		WHERE (g.retry_after IS NULL OR g.retry_after < NOW())
		  AND (g.ratings_hidden = FALSE OR g.ratings_hidden_until IS NULL OR g.ratings_hidden_until < NOW())
		  AND (
		       g.scraped_at IS NULL
		    OR (g.ratings_hidden = TRUE AND g.ratings_hidden_until < NOW())
		    OR g.description IS NULL
		    OR g.publish_date IS NULL
		    OR g.title IS NULL
		  )
		ORDER BY g.created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrichment candidates: %w", err)
	}
	defer rows.Close()

	return collectGames(rows)
}

// GetStaleGames returns enriched games whose last scrape is older than
// staleDays, oldest first
func (r *gameRepository) GetStaleGames(staleDays, limit int) ([]Game, error) {
	rows, err := r.db.Query(`
		SELECT `+gameColumns+`
		FROM games g
		LEFT JOIN creators c ON g.creator_id = c.id
		WHERE g.scraped_at IS NOT NULL
		  AND g.scraped_at < NOW() - make_interval(days => $1)
		ORDER BY g.scraped_at
		LIMIT $2
	`, staleDays, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get stale games: %w", err)
	}
	defer rows.Close()

	return collectGames(rows)
}

// UpdateGameRatings applies a full enrichment result: rating, rating_count
// and comment_count always overwrite, metadata keeps existing non-empty
// values, the game is marked scraped and any cooldown state is cleared.
func (r *gameRepository) UpdateGameRatings(gameID int64, details *scrape.GameDetails) error {
	_, err := r.db.Exec(`
		UPDATE games
		SET rating = $1,
		    rating_count = $2,
		    comment_count = $3,
		    description = COALESCE(description, NULLIF($4, '')),
		    tags = COALESCE(tags, $5),
		    publish_date = COALESCE(publish_date, $6),
		    title = COALESCE(title, NULLIF($7, '')),
		    scraped_at = NOW(),
		    ratings_hidden = FALSE,
		    ratings_hidden_until = NULL,
		    retry_after = NULL,
		    updated_at = NOW()
		WHERE id = $8
	`, details.Rating, details.RatingCount, details.CommentCount,
		details.Description, tagsParam(details.Tags), details.PublishDate,
		details.Title, gameID)

	if err != nil {
		return fmt.Errorf("failed to update game %d ratings: %w", gameID, err)
	}

	return nil
}

// MarkRatingsHidden records a fetch whose page carried no rating block:
// comment count and metadata are still persisted, scraped_at and rating
// fields stay untouched, and the game re-enters the candidate pool once
// the cooldown expires.
func (r *gameRepository) MarkRatingsHidden(gameID int64, details *scrape.GameDetails, cooldownDays int) error {
	_, err := r.db.Exec(`
		UPDATE games
		SET ratings_hidden = TRUE,
		    ratings_hidden_until = NOW() + make_interval(days => $1),
		    comment_count = $2,
		    description = COALESCE(description, NULLIF($3, '')),
		    tags = COALESCE(tags, $4),
		    publish_date = COALESCE(publish_date, $5),
		    title = COALESCE(title, NULLIF($6, '')),
		    updated_at = NOW()
		WHERE id = $7
	`, cooldownDays, details.CommentCount, details.Description,
		tagsParam(details.Tags), details.PublishDate, details.Title, gameID)

	if err != nil {
		return fmt.Errorf("failed to mark game %d ratings hidden: %w", gameID, err)
	}

	return nil
}

// MarkGameFailed defers a game after a fetch failure without altering any
// rating data
func (r *gameRepository) MarkGameFailed(gameID int64, cooldownDays int) error {
	_, err := r.db.Exec(`
		UPDATE games
		SET retry_after = NOW() + make_interval(days => $1),
		    updated_at = NOW()
		WHERE id = $2
	`, cooldownDays, gameID)

	if err != nil {
		return fmt.Errorf("failed to mark game %d failed: %w", gameID, err)
	}

	return nil
}

// AggregateForCreator computes the sufficient statistics for scoring in a
// single pass over the creator's games
func (r *gameRepository) AggregateForCreator(creatorID int64) (*CreatorAggregate, error) {
	var agg CreatorAggregate
	err := r.db.QueryRow(`
		SELECT
			COUNT(*) AS total_games,
			COALESCE(SUM(CASE WHEN rating IS NOT NULL THEN 1 ELSE 0 END), 0) AS rated_games,
			COALESCE(SUM(CASE WHEN rating IS NOT NULL THEN rating_count ELSE 0 END), 0) AS total_ratings,
			COALESCE(SUM(CASE WHEN rating IS NOT NULL THEN rating * rating_count ELSE 0 END), 0) AS weighted_rating_sum,
			COALESCE(SUM(comment_count), 0) AS total_comments
		FROM games
		WHERE creator_id = $1
	`, creatorID).Scan(
		&agg.TotalGames, &agg.RatedGames, &agg.TotalRatings,
		&agg.WeightedRatingSum, &agg.TotalComments,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to aggregate games for creator %d: %w", creatorID, err)
	}

	return &agg, nil
}

// GetGameCount returns the total number of games
func (r *gameRepository) GetGameCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM games").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get game count: %w", err)
	}
	return count, nil
}

// GetEnrichedGameCount returns the number of games currently counting as
// enriched: scraped and not sitting in a hidden-ratings window
func (r *gameRepository) GetEnrichedGameCount() (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM games
		WHERE scraped_at IS NOT NULL AND ratings_hidden = FALSE
	`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get enriched game count: %w", err)
	}
	return count, nil
}

// tagsParam maps an empty tag set to NULL so a tagless enrichment never
// replaces previously stored tags
func tagsParam(tags []string) any {
	if len(tags) == 0 {
		return nil
	}
	return pq.Array(tags)
}
