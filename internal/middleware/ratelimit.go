package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nvoxel/auth-service/internal/config"
	"github.com/nvoxel/auth-service/internal/ratelimit"
	"github.com/nvoxel/auth-service/internal/utils"
)

// RateLimit returns a middleware enforcing one rule on one route through
// the given limiter. Counter keys combine the configured prefix, a route
// name and the caller identity: the authenticated subject where available,
// falling back to the client network address on unauthenticated routes.
//
// The limiter performs the increment-and-check atomically; this middleware
// only translates the verdict into 429 responses and Retry-After hints. A
// limiter error fails open: throttling is protection, not authorization,
// so a broken counter store must not take the route down.
func RateLimit(rule config.RateLimitRule, prefix, route string, lim ratelimit.Limiter) echo.MiddlewareFunc {
	if lim == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := prefix + ":" + route + ":" + callerKey(c)

			allowed, retryAfter, err := lim.Allow(c.Request().Context(), key, rule.Max, rule.Window)
			if err != nil {
				c.Logger().Warnf("ratelimit: limiter error for key=%s: %v", key, err)
				return next(c)
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(rule.Max))
			if !allowed {
				secs := int(math.Ceil(retryAfter.Seconds()))
				if secs < 1 {
					secs = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return utils.Fail(c, http.StatusTooManyRequests, utils.CodeRateLimited, "rate limit exceeded")
			}
			return next(c)
		}
	}
}

// callerKey picks the identity a counter is keyed by. Authenticated
// requests count per subject so one abusive user cannot exhaust a shared
// NAT address's budget; anonymous requests count per client IP.
func callerKey(c echo.Context) string {
	if id, ok := CurrentUserID(c); ok {
		return "user:" + strconv.FormatUint(id, 10)
	}
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}
