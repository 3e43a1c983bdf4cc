package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/redis/go-redis/v9"
)

const counterKeyPrefix = "ratelimit:"

// RedisCounter implements httprate.LimitCounter over a Redis client. Each
// (key, window) pair maps to one Redis key that expires after two windows,
// which is long enough for the sliding-window read of current + previous.
type RedisCounter struct {
	client       *redis.Client
	windowLength time.Duration
}

var _ httprate.LimitCounter = (*RedisCounter)(nil)

// NewRedisCounter creates a counter backed by the given client.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

// Config is called by httprate with the configured limit and window.
func (c *RedisCounter) Config(_ int, windowLength time.Duration) {
	c.windowLength = windowLength
}

// Increment adds one request to the counter for the current window.
func (c *RedisCounter) Increment(key string, currentWindow time.Time) error {
	return c.IncrementBy(key, currentWindow, 1)
}

// IncrementBy adds amount requests to the counter for the current window.
func (c *RedisCounter) IncrementBy(key string, currentWindow time.Time, amount int) error {
	ctx := context.Background()
	bucket := c.bucketKey(key, currentWindow)

	pipe := c.client.TxPipeline()
	pipe.IncrBy(ctx, bucket, int64(amount))
	pipe.Expire(ctx, bucket, c.windowLength*2)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	return nil
}

// Get returns the request counts for the current and previous windows.
func (c *RedisCounter) Get(key string, currentWindow, previousWindow time.Time) (int, int, error) {
	ctx := context.Background()
	values, err := c.client.MGet(ctx, c.bucketKey(key, currentWindow), c.bucketKey(key, previousWindow)).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read rate limit counters: %w", err)
	}

	curr, err := toCount(values[0])
	if err != nil {
		return 0, 0, err
	}
	prev, err := toCount(values[1])
	if err != nil {
		return 0, 0, err
	}
	return curr, prev, nil
}

func (c *RedisCounter) bucketKey(key string, window time.Time) string {
	return counterKeyPrefix + key + ":" + strconv.FormatInt(window.Unix(), 10)
}

func toCount(value any) (int, error) {
	if value == nil {
		return 0, nil
	}
	s, ok := value.(string)
	if !ok {
		return 0, fmt.Errorf("unexpected rate limit counter type %T", value)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid rate limit counter value %q: %w", s, err)
	}
	return n, nil
}
