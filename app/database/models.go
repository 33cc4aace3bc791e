package database

import (
	"time"
)

// Creator represents a creator record in the database
type Creator struct {
	ID         int64
	Name       string
	ProfileURL string
	Backfilled bool
	FirstSeen  time.Time
	UpdatedAt  time.Time
}

// Game represents a game record in the database. Rating stays a pointer:
// nil means no rating has been observed, 0.0 is a real observed rating.
type Game struct {
	ID                 int64
	CreatorID          *int64
	CreatorName        string // joined from creators, "unknown" for orphaned rows
	PlatformID         string
	Title              string
	URL                string
	PublishDate        *time.Time
	Rating             *float64
	RatingCount        int
	CommentCount       int
	Description        string
	Tags               []string
	ScrapedAt          *time.Time
	RatingsHidden      bool
	RatingsHiddenUntil *time.Time
	RetryAfter         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CreatorScore is the derived ranking row, fully recomputed on every
// scoring pass and upserted as a whole.
type CreatorScore struct {
	CreatorID    int64
	CreatorName  string // joined for leaderboard output
	GameCount    int
	TotalRatings int
	AvgRating    float64
	Score        float64
	CalculatedAt time.Time
}

// CreatorAggregate carries the sufficient statistics the scoring engine
// consumes. WeightedRatingSum is sum(rating * rating_count) over rated
// games, which makes the derived mean a true weighted average.
type CreatorAggregate struct {
	TotalGames        int
	RatedGames        int
	TotalRatings      int64
	WeightedRatingSum float64
	TotalComments     int64
}
