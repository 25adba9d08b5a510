package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "workspace:ratelimit:"

// Redis is a fixed-window limiter shared by every instance using the same
// Redis server.
type Redis struct {
	client      redis.UniversalClient
	maxAttempts int
	window      time.Duration
}

// NewRedis returns a limiter allowing maxAttempts per key in each window.
func NewRedis(client redis.UniversalClient, maxAttempts int, window time.Duration) *Redis {
	return &Redis{client: client, maxAttempts: maxAttempts, window: window}
}

func (l *Redis) Allow(ctx context.Context, key string) error {
	key = keyPrefix + key
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// the window starts with the first hit
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	if count > int64(l.maxAttempts) {
		return ErrLimited
	}
	return nil
}
