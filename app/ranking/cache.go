package ranking

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// leaderboardKey is the sorted set holding creator ids ranked by score.
const leaderboardKey = "creators:by_score"

const redisTimeout = 3 * time.Second

// RedisCache mirrors creator scores into a Redis sorted set.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to Redis and verifies the connection before
// returning.
func NewRedisCache(addr string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Add(creatorID int64, score float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	member := strconv.FormatInt(creatorID, 10)
	err := c.client.ZAdd(ctx, leaderboardKey, redis.Z{Score: score, Member: member}).Err()
	if err != nil {
		return fmt.Errorf("failed to mirror score for creator %d: %w", creatorID, err)
	}

	return nil
}

func (c *RedisCache) TopIDs(limit, offset int) ([]int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	stop := int64(offset + limit - 1)
	members, err := c.client.ZRevRange(ctx, leaderboardKey, int64(offset), stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard range: %w", err)
	}

	ids := make([]int64, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected leaderboard member %q: %w", member, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
