// Package ratelimit bounds request volume per key within a rolling window.
// The backing store is swappable behind a narrow increment-and-check
// interface: a Redis implementation for multi-instance deployments and an
// in-process one used in tests and when no Redis server is reachable.
package ratelimit

import (
	"context"
	"time"
)

// Limiter answers whether one more request under key fits inside the
// window. Implementations must increment and check atomically; a
// read-then-write sequence would admit more than max requests under
// concurrent load. When the request is denied, retryAfter hints how long
// until the window opens again.
type Limiter interface {
	Allow(ctx context.Context, key string, max int, window time.Duration) (allowed bool, retryAfter time.Duration, err error)
}
