package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ViewCounter keeps hot per-listing view counts in redis so page views stay a
// single atomic INCR instead of a row update on every request.
type ViewCounter interface {
	Increment(ctx context.Context, listingID string) (int64, error)
	Get(ctx context.Context, listingID string) (int64, error)
}

type redisViewCounter struct {
	client *redis.Client
}

func NewRedisViewCounter(client *redis.Client) ViewCounter {
	return &redisViewCounter{client: client}
}

func viewKey(listingID string) string {
	return fmt.Sprintf("listing:views:%s", listingID)
}

func (c *redisViewCounter) Increment(ctx context.Context, listingID string) (int64, error) {
	return c.client.Incr(ctx, viewKey(listingID)).Result()
}

func (c *redisViewCounter) Get(ctx context.Context, listingID string) (int64, error) {
	n, err := c.client.Get(ctx, viewKey(listingID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
