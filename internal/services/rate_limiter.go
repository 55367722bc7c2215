package services

import "context"

// RateLimiter gates how often a key may perform a counted action within the
// limiter's window. Allow counts the attempt and reports whether it is
// within quota; the increment-and-check must be atomic per key so that
// concurrent attempts cannot both claim the last slot.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
