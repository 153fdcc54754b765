package middleware // middleware provides shared request processing for handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nvoxel/auth-service/internal/model"
	"github.com/nvoxel/auth-service/internal/utils"
)

// RequireRole returns a middleware that enforces a minimum role for the
// authenticated user. Roles are totally ordered by privilege, so an ADMIN
// passes a USER guard but not the other way around. Absence of a role in
// the context counts as a deny: the guard never falls through to the
// handler without an explicit allow. It assumes JWTAuth ran earlier in the
// chain.
func RequireRole(min model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := CurrentRole(c)
			if !ok || !role.AtLeast(min) {
				return utils.Fail(c, http.StatusForbidden, utils.CodeForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

// RequireExactRole is the exact-match variant for routes that want a
// specific role rather than a minimum.
func RequireExactRole(want model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := CurrentRole(c)
			if !ok || role != want {
				return utils.Fail(c, http.StatusForbidden, utils.CodeForbidden, "forbidden")
			}
			return next(c)
		}
	}
}

// RequireAdmin is shorthand for RequireRole(model.RoleAdmin).
func RequireAdmin() echo.MiddlewareFunc { return RequireRole(model.RoleAdmin) }

// RequireUser is shorthand for RequireRole(model.RoleUser).
func RequireUser() echo.MiddlewareFunc { return RequireRole(model.RoleUser) }

// RequireAny admits any authenticated caller with a known role.
func RequireAny() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := CurrentRole(c)
			if !ok || !role.Valid() {
				return utils.Fail(c, http.StatusForbidden, utils.CodeForbidden, "forbidden")
			}
			return next(c)
		}
	}
}
