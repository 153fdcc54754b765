package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitRule bounds request volume for one route: at most Max requests
// per rolling Window per key.
type RateLimitRule struct {
	Max    int
	Window time.Duration
}

// RateLimitConfig carries the per-route rate limit rules. The auth routes
// get tight ceilings because they are the abuse targets; Default applies to
// every other gated route. Prefix namespaces counter keys in Redis.
type RateLimitConfig struct {
	Enabled  bool
	Register RateLimitRule
	Login    RateLimitRule
	Refresh  RateLimitRule
	Default  RateLimitRule
	Prefix   string
}

// LoadRateLimitConfig reads environment variables to build a
// RateLimitConfig. Defaults are used when variables are not set.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:  envBool("RATE_LIMIT_ENABLED", true),
		Register: RateLimitRule{Max: envInt("RATE_LIMIT_REGISTER_MAX", 3), Window: envDur("RATE_LIMIT_REGISTER_WINDOW", time.Hour)},
		Login:    RateLimitRule{Max: envInt("RATE_LIMIT_LOGIN_MAX", 5), Window: envDur("RATE_LIMIT_LOGIN_WINDOW", 15*time.Minute)},
		Refresh:  RateLimitRule{Max: envInt("RATE_LIMIT_REFRESH_MAX", 10), Window: envDur("RATE_LIMIT_REFRESH_WINDOW", 15*time.Minute)},
		Default:  RateLimitRule{Max: envInt("RATE_LIMIT_DEFAULT_MAX", 100), Window: envDur("RATE_LIMIT_DEFAULT_WINDOW", 15*time.Minute)},
		Prefix:   envStr("RATE_LIMIT_PREFIX", "rl"),
	}
	for _, r := range []*RateLimitRule{&cfg.Register, &cfg.Login, &cfg.Refresh, &cfg.Default} {
		if r.Max < 1 {
			r.Max = 1
		}
		if r.Window <= 0 {
			r.Window = time.Minute
		}
	}
	return cfg
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
