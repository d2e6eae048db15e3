package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "leaderboard:alltime"

// LeaderboardCache accumulates cross-match victory totals in a Redis ZSET.
// It is non-authoritative: live room state never touches Redis.
type LeaderboardCache interface {
	AddVictories(ctx context.Context, playerName string, n int) error
	GetTop(ctx context.Context, limit int) ([]LeaderboardEntry, error)
}

// LeaderboardEntry is a single all-time leaderboard row
type LeaderboardEntry struct {
	PlayerName string `json:"playerName"`
	Victories  int    `json:"victories"`
	Rank       int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
	}
}

func (c *leaderboardCache) AddVictories(ctx context.Context, playerName string, n int) error {
	return c.client.ZIncrBy(ctx, leaderboardKey, float64(n), playerName).Err()
}

func (c *leaderboardCache) GetTop(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			PlayerName: z.Member.(string),
			Victories:  int(z.Score),
			Rank:       i + 1,
		}
	}
	return entries, nil
}
