package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nvoxel/auth-service/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's subject and role claims into the request context.
// The provided secret must match the one used when issuing tokens. This
// middleware wraps protected routes so handlers can read the authenticated
// user via CurrentUserID and CurrentRole.
//
// Evaluation order per request: token presence, then token validity, then
// (in RequireRole) role sufficiency. Any failure short-circuits the chain.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return utils.Fail(c, http.StatusUnauthorized, utils.CodeTokenInvalid, "missing bearer token")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				if errors.Is(err, utils.ErrTokenExpired) {
					return utils.Fail(c, http.StatusUnauthorized, utils.CodeTokenExpired, "token expired")
				}
				return utils.Fail(c, http.StatusUnauthorized, utils.CodeTokenInvalid, "invalid token")
			}

			c.Set(ctxUserID, claims.UserID)
			c.Set(ctxRole, claims.Role)
			return next(c)
		}
	}
}
