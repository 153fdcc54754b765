package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window counter shared across service instances.
// Increment, expiry and check run inside a single Lua script so concurrent
// requests from multiple workers never race between the INCR and the
// comparison against the limit.
type RedisLimiter struct {
	rdb    *redis.Client
	script *redis.Script
}

// The script returns {allowed, retry_after_ms}. The first increment of a
// fresh key sets the window TTL; PTTL on a full window yields the
// retry-after hint.
var windowScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[2])
	end
	if count > tonumber(ARGV[1]) then
		local ttl = redis.call('PTTL', KEYS[1])
		if ttl < 0 then ttl = tonumber(ARGV[2]) end
		return {0, ttl}
	end
	return {1, 0}
`)

// NewRedis returns a limiter backed by the given client.
func NewRedis(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, script: windowScript}
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string, max int, window time.Duration) (bool, time.Duration, error) {
	vals, err := l.script.Run(ctx, l.rdb, []string{key}, max, window.Milliseconds()).Result()
	if err != nil {
		return false, 0, err
	}
	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 2 {
		return true, 0, nil
	}
	allowed := asInt64(arr[0]) == 1
	retryAfter := time.Duration(asInt64(arr[1])) * time.Millisecond
	if retryAfter < 0 {
		retryAfter = 0
	}
	return allowed, retryAfter, nil
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case float64:
		return int64(t)
	}
	return 0
}
