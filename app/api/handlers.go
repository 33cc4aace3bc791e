package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/datkv/itch-creators/app/cfg"
	"github.com/datkv/itch-creators/app/database"
	"github.com/datkv/itch-creators/app/tasks"
)

const maxLeaderboardLimit = 200

func NewHandler(db PingerInterface, creatorRepo database.CreatorRepository,
	gameRepo database.GameRepository, scoreRepo database.ScoreRepository,
	leaderboard LeaderboardInterface, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		db:          db,
		creatorRepo: creatorRepo,
		gameRepo:    gameRepo,
		scoreRepo:   scoreRepo,
		leaderboard: leaderboard,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		slog.Error("Database ping failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   cfg.GetVersion(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if creators, err := h.creatorRepo.GetCreatorCount(); err == nil {
		stats["creators"] = creators
	}

	if games, err := h.gameRepo.GetGameCount(); err == nil {
		stats["games"] = games
	}

	if enriched, err := h.gameRepo.GetEnrichedGameCount(); err == nil {
		stats["enriched_games"] = enriched
	}

	if scored, err := h.scoreRepo.GetScoredCreatorCount(); err == nil {
		stats["scored_creators"] = scored
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetLeaderboard(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset parameter"})
		return
	}

	scores, err := h.leaderboard.Top(limit, offset)
	if err != nil {
		slog.Error("Database error", "operation", "get_leaderboard", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	entries := make([]map[string]interface{}, 0, len(scores))

	for i, score := range scores {
		entries = append(entries, map[string]interface{}{
			"rank":          offset + i + 1,
			"creator":       score.CreatorName,
			"score":         score.Score,
			"game_count":    score.GameCount,
			"total_ratings": score.TotalRatings,
			"avg_rating":    score.AvgRating,
			"calculated_at": score.CalculatedAt,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"leaderboard": entries,
		"limit":       limit,
		"offset":      offset,
	})
}

func (h *Handler) GetCreator(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing creator name parameter"})
		return
	}

	creator, err := h.creatorRepo.GetCreatorByName(name)
	if err != nil {
		slog.Error("Database error", "operation", "get_creator", "creator", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if creator == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Creator not found"})
		return
	}

	details := map[string]interface{}{
		"name":        creator.Name,
		"profile_url": creator.ProfileURL,
		"backfilled":  creator.Backfilled,
		"first_seen":  creator.FirstSeen,
	}

	if score, err := h.scoreRepo.GetScoreByCreator(creator.ID); err == nil && score != nil {
		details["score"] = map[string]interface{}{
			"score":         score.Score,
			"game_count":    score.GameCount,
			"total_ratings": score.TotalRatings,
			"avg_rating":    score.AvgRating,
			"calculated_at": score.CalculatedAt,
		}
	}

	games, err := h.gameRepo.GetGamesByCreator(creator.ID)
	if err != nil {
		slog.Error("Database error", "operation", "get_creator_games", "creator", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	gameList := make([]map[string]interface{}, 0, len(games))

	for _, game := range games {
		gameList = append(gameList, map[string]interface{}{
			"title":         game.Title,
			"url":           game.URL,
			"rating":        game.Rating,
			"rating_count":  game.RatingCount,
			"comment_count": game.CommentCount,
			"publish_date":  game.PublishDate,
		})
	}

	details["games"] = gameList
	details["game_count"] = len(gameList)

	c.JSON(http.StatusOK, details)
}

func (h *Handler) APITriggerTask(c *gin.Context) {
	taskType := c.Param("type")
	if taskType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing task type parameter"})
		return
	}

	task, err := h.scheduler.Trigger(taskType)
	if err != nil {
		if errors.Is(err, tasks.ErrUnknownTaskType) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Unknown task type",
				"details": err.Error(),
			})
			return
		}

		slog.Error("Error enqueueing task", "type", taskType, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task": gin.H{
			"id":   task.GetID(),
			"type": task.GetType(),
		},
	})
}
