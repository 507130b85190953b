package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"levfin_model/pkg/core/projection"
)

const publishedKeyPrefix = "levfin:published:"

// PublishedCache holds the projection of each published model in Redis so
// readers do not rerun the engine.
type PublishedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPublishedCache wraps client. A zero ttl keeps entries until invalidated.
func NewPublishedCache(client *redis.Client, ttl time.Duration) *PublishedCache {
	return &PublishedCache{client: client, ttl: ttl}
}

// NewRedisClient builds a client and checks that the server answers.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func publishedKey(id uuid.UUID) string {
	return publishedKeyPrefix + id.String()
}

// Get returns the cached result; ok is false on a miss.
func (c *PublishedCache) Get(ctx context.Context, id uuid.UUID) (res *projection.ProjectionResult, ok bool, err error) {
	b, err := c.client.Get(ctx, publishedKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read published result: %w", err)
	}

	var r projection.ProjectionResult
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal published result: %w", err)
	}
	return &r, true, nil
}

func (c *PublishedCache) Put(ctx context.Context, id uuid.UUID, r *projection.ProjectionResult) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal published result: %w", err)
	}
	if err := c.client.Set(ctx, publishedKey(id), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache published result: %w", err)
	}
	return nil
}

func (c *PublishedCache) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = publishedKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate published result: %w", err)
	}
	return nil
}
