package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a fixed-window counter held in process memory. Counters
// carry an expiry equal to their window and stale entries are swept on the
// way through Allow, so the map cannot grow without bound.
type MemoryLimiter struct {
	mu           sync.Mutex
	entries      map[string]*entry
	lastCleanup  time.Time
	cleanupEvery time.Duration
}

type entry struct {
	count int
	reset time.Time
}

// NewMemory returns an empty in-process limiter.
func NewMemory() *MemoryLimiter {
	return &MemoryLimiter{
		entries:      map[string]*entry{},
		lastCleanup:  time.Now(),
		cleanupEvery: time.Minute,
	}
}

// Allow implements Limiter. The mutex makes the increment-and-check atomic
// across request-handling goroutines.
func (l *MemoryLimiter) Allow(_ context.Context, key string, max int, window time.Duration) (bool, time.Duration, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastCleanup) >= l.cleanupEvery {
		for k, v := range l.entries {
			if now.After(v.reset) {
				delete(l.entries, k)
			}
		}
		l.lastCleanup = now
	}

	e, ok := l.entries[key]
	if !ok || now.After(e.reset) {
		l.entries[key] = &entry{count: 1, reset: now.Add(window)}
		return true, 0, nil
	}

	if e.count >= max {
		retryAfter := e.reset.Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return false, retryAfter, nil
	}

	e.count++
	return true, 0, nil
}
