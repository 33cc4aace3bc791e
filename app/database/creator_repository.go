package database

import (
	"database/sql"
	"fmt"
)

// creatorRepository handles database operations for creators
type creatorRepository struct {
	db *DB
}

// NewCreatorRepository creates a new creator repository
func NewCreatorRepository(db *DB) CreatorRepository {
	return &creatorRepository{db: db}
}

// UpsertCreator inserts a creator or returns the existing row's id. The
// profile URL follows first-writer-wins: an existing non-empty value is
// never replaced.
func (r *creatorRepository) UpsertCreator(name, profileURL string) (int64, error) {
	var id int64
	err := r.db.QueryRow(`
		INSERT INTO creators (name, profile_url)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET
			profile_url = COALESCE(NULLIF(creators.profile_url, ''), EXCLUDED.profile_url),
			updated_at = NOW()
		RETURNING id
	`, name, profileURL).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to upsert creator %s: %w", name, err)
	}

	return id, nil
}

// GetCreatorByName retrieves a creator by its unique handle
func (r *creatorRepository) GetCreatorByName(name string) (*Creator, error) {
	var creator Creator
	err := r.db.QueryRow(`
		SELECT id, name, COALESCE(profile_url, ''), backfilled, first_seen, updated_at
		FROM creators
		WHERE name = $1
	`, name).Scan(
		&creator.ID, &creator.Name, &creator.ProfileURL, &creator.Backfilled,
		&creator.FirstSeen, &creator.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get creator by name: %w", err)
	}

	return &creator, nil
}

// GetUnbackfilledCreators returns creators whose game history has not been
// paginated yet, oldest first
func (r *creatorRepository) GetUnbackfilledCreators(limit int) ([]Creator, error) {
	rows, err := r.db.Query(`
		SELECT id, name, COALESCE(profile_url, ''), backfilled, first_seen, updated_at
		FROM creators
		WHERE backfilled = FALSE
		ORDER BY first_seen
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get unbackfilled creators: %w", err)
	}
	defer rows.Close()

	var creators []Creator
	for rows.Next() {
		var creator Creator
		err := rows.Scan(
			&creator.ID, &creator.Name, &creator.ProfileURL, &creator.Backfilled,
			&creator.FirstSeen, &creator.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan creator row: %w", err)
		}
		creators = append(creators, creator)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating creator rows: %w", err)
	}

	return creators, nil
}

// MarkCreatorBackfilled flips the backfilled flag once the creator's full
// game history has been walked
func (r *creatorRepository) MarkCreatorBackfilled(creatorID int64) error {
	_, err := r.db.Exec(`
		UPDATE creators
		SET backfilled = TRUE, updated_at = NOW()
		WHERE id = $1
	`, creatorID)

	if err != nil {
		return fmt.Errorf("failed to mark creator %d backfilled: %w", creatorID, err)
	}

	return nil
}

// GetAllCreatorIDs returns every known creator id for a scoring pass
func (r *creatorRepository) GetAllCreatorIDs() ([]int64, error) {
	rows, err := r.db.Query(`SELECT id FROM creators ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan creator id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating creator ids: %w", err)
	}

	return ids, nil
}

// GetCreatorCount returns the total number of creators
func (r *creatorRepository) GetCreatorCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM creators").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get creator count: %w", err)
	}
	return count, nil
}
