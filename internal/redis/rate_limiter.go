package redis

import (
	"context"
	"fmt"
	"time"

	"social-go/internal/services"

	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "rl:friendreq:"

// fixedWindowRateLimiter implements services.RateLimiter with a per-key
// fixed window counter in Redis. INCR is atomic on the server side, so two
// concurrent attempts can never both observe "under quota" for the last
// remaining slot.
type fixedWindowRateLimiter struct {
	client *redis.Client
	quota  int64
	window time.Duration
}

// NewFixedWindowRateLimiter creates a limiter allowing quota attempts per
// window for each key.
func NewFixedWindowRateLimiter(client *redis.Client, quota int, window time.Duration) services.RateLimiter {
	return &fixedWindowRateLimiter{
		client: client,
		quota:  int64(quota),
		window: window,
	}
}

// Allow counts the attempt against the key's window and reports whether it
// is within quota. The window TTL is armed only once per window (NX), so a
// burst cannot keep pushing its own deadline forward.
func (l *fixedWindowRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := rateLimitKeyPrefix + key

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter for %s: %w", key, err)
	}
	if err := l.client.ExpireNX(ctx, redisKey, l.window).Err(); err != nil {
		return false, fmt.Errorf("failed to arm rate limit window for %s: %w", key, err)
	}

	return count <= l.quota, nil
}
