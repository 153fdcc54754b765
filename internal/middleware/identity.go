package middleware

// identity.go defines the context keys under which JWTAuth stores the
// verified claims, plus typed accessors for handlers and other middleware.
// Reading through these helpers keeps the key strings in one place.

import (
	"github.com/labstack/echo/v4"

	"github.com/nvoxel/auth-service/internal/model"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// CurrentUserID returns the authenticated user's id from the context. The
// second return is false when no valid token was presented.
func CurrentUserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok
}

// CurrentRole returns the authenticated user's role from the context.
func CurrentRole(c echo.Context) (model.Role, bool) {
	r, ok := c.Get(ctxRole).(model.Role)
	return r, ok
}
