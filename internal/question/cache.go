package question

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// Cache provides Redis-backed subject pool caching to offload the question
// store; duels of the same subject reshuffle the cached pool in memory.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ PoolCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(subjectID int64) string {
	return "duelpool:" + strconv.FormatInt(subjectID, 10)
}

func (c *Cache) Get(ctx context.Context, subjectID int64) ([]Question, error) {
	data, err := c.client.Get(ctx, c.key(subjectID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var pool []Question
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, err
	}
	return pool, nil
}

func (c *Cache) Set(ctx context.Context, subjectID int64, pool []Question) error {
	data, err := json.Marshal(pool)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(subjectID), data, c.ttl).Err()
}
