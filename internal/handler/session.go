package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nvoxel/auth-service/internal/middleware"
	"github.com/nvoxel/auth-service/internal/queue"
	"github.com/nvoxel/auth-service/internal/utils"
)

// sessionPayload describes one live refresh session. Token hashes stay
// server-side; the id is enough for a client to reason about its sessions.
type sessionPayload struct {
	ID        uint64    `json:"id"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Sessions lists the caller's active refresh sessions. Each entry is the
// head of a rotation chain.
func (h *AuthHandler) Sessions(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, utils.CodeTokenInvalid, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tokens, err := h.Tokens.ListActiveForUser(ctx, userID)
	if err != nil {
		h.Logger.Error("sessions: list failed", "err", err)
		return utils.Internal(c)
	}
	out := make([]sessionPayload, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, sessionPayload{ID: t.ID, IssuedAt: t.IssuedAt.UTC(), ExpiresAt: t.ExpiresAt.UTC()})
	}
	return utils.OK(c, http.StatusOK, "", out)
}

// RevokeSessions logs the caller out everywhere by revoking every active
// refresh token they own.
func (h *AuthHandler) RevokeSessions(c echo.Context) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, utils.CodeTokenInvalid, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Tokens.RevokeAllForUser(ctx, userID); err != nil {
		h.Logger.Error("sessions: revoke all failed", "err", err)
		return utils.Internal(c)
	}
	h.publish(queue.SecurityEvent{
		Kind: queue.EventSessionsRevokedAll, UserID: userID,
		IP: c.RealIP(), OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return utils.OK(c, http.StatusOK, "sessions revoked", nil)
}
