package api

import (
	"github.com/datkv/itch-creators/app/database"
	"github.com/datkv/itch-creators/app/ranking"
	"github.com/datkv/itch-creators/app/tasks"
)

// LeaderboardInterface is the read side of the ranking materializer.
type LeaderboardInterface interface {
	Top(limit, offset int) ([]database.CreatorScore, error)
}

var _ LeaderboardInterface = (*ranking.Materializer)(nil)

// PingerInterface reports database reachability for the health endpoint.
type PingerInterface interface {
	Ping() error
}

var _ PingerInterface = (*database.DB)(nil)

type Handler struct {
	db          PingerInterface
	creatorRepo database.CreatorRepository
	gameRepo    database.GameRepository
	scoreRepo   database.ScoreRepository
	leaderboard LeaderboardInterface
	scheduler   tasks.TaskSchedulerInterface
}
