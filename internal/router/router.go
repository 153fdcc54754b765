package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework for routing

	"github.com/nvoxel/auth-service/internal/config"
	"github.com/nvoxel/auth-service/internal/handler"
	"github.com/nvoxel/auth-service/internal/middleware"
	"github.com/nvoxel/auth-service/internal/ratelimit"
)

// RegisterRoutes registers routes that carry no middleware at all.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes and their middleware.
//
// Per-request order on protected routes is: bearer token verification, then
// the rate limit gate (so authenticated traffic is counted per subject),
// then the role guard, then the handler. The anonymous auth routes carry
// only their per-route rate limit; register, login and refresh get the
// tight ceilings since they are the abuse targets.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, rl config.RateLimitConfig, lim ratelimit.Limiter) {
	if !rl.Enabled {
		lim = nil
	}

	g := e.Group("/auth")
	g.POST("/register", a.Register, middleware.RateLimit(rl.Register, rl.Prefix, "register", lim))
	g.POST("/login", a.Login, middleware.RateLimit(rl.Login, rl.Prefix, "login", lim))
	g.POST("/refresh", a.Refresh, middleware.RateLimit(rl.Refresh, rl.Prefix, "refresh", lim))
	g.POST("/logout", a.Logout, middleware.RateLimit(rl.Default, rl.Prefix, "logout", lim))

	// Session-holder routes: any authenticated role.
	me := e.Group("/auth")
	me.Use(middleware.JWTAuth(jwtSecret))
	me.Use(middleware.RateLimit(rl.Default, rl.Prefix, "me", lim))
	me.Use(middleware.RequireAny())
	me.GET("/me", a.Me)
	me.GET("/sessions", a.Sessions)
	me.DELETE("/sessions", a.RevokeSessions)

	// Profile lookup: authenticated, with an ownership check inside the
	// handler (owner or admin).
	users := e.Group("/users")
	users.Use(middleware.JWTAuth(jwtSecret))
	users.Use(middleware.RateLimit(rl.Default, rl.Prefix, "users", lim))
	users.Use(middleware.RequireAny())
	users.GET("/:id", a.Profile)
}

// RegisterAdmin registers the admin-only user management routes. The
// RequireAdmin guard uses the role order, so only ADMIN passes.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, rl config.RateLimitConfig, lim ratelimit.Limiter) {
	if !rl.Enabled {
		lim = nil
	}

	g := e.Group("/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RateLimit(rl.Default, rl.Prefix, "admin", lim))
	g.Use(middleware.RequireAdmin())
	g.GET("/users", h.ListUsers)
	g.PATCH("/users/:id/role", h.UpdateRole)
	g.POST("/users/:id/verify-email", h.VerifyEmail)
	g.DELETE("/users/:id", h.DeleteUser)
}
