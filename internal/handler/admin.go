package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nvoxel/auth-service/internal/model"
	"github.com/nvoxel/auth-service/internal/repository"
	"github.com/nvoxel/auth-service/internal/utils"
)

// AdminUserStore is the slice of the user repository the admin endpoints
// need. All of these operate on active (non-deleted) users only.
type AdminUserStore interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateRole(ctx context.Context, id uint64, role model.Role) error
	MarkEmailVerified(ctx context.Context, id uint64) error
	SoftDelete(ctx context.Context, id uint64) error
}

// AdminHandler bundles dependencies for the admin-only user management
// endpoints. Routes using it sit behind RequireAdmin.
type AdminHandler struct {
	Logger *slog.Logger
	Users  AdminUserStore
	Tokens TokenStore
}

func NewAdminHandler(logger *slog.Logger, u AdminUserStore, t TokenStore) *AdminHandler {
	return &AdminHandler{Logger: logger, Users: u, Tokens: t}
}

type updateRoleReq struct {
	Role string `json:"role"`
}

// ListUsers returns all active users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		h.Logger.Error("admin: list users failed", "err", err)
		return utils.Internal(c)
	}
	out := make([]userPayload, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPayload(u))
	}
	return utils.OK(c, http.StatusOK, "", out)
}

// UpdateRole changes a user's role. Promoting or demoting takes effect on
// the next issued access token; outstanding tokens keep their old role
// claim until they expire.
func (h *AdminHandler) UpdateRole(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, utils.CodeValidation, "invalid user id")
	}
	var req updateRoleReq
	if err := c.Bind(&req); err != nil {
		return utils.Fail(c, http.StatusBadRequest, utils.CodeValidation, "invalid body")
	}
	role := model.ParseRole(strings.ToUpper(strings.TrimSpace(req.Role)))
	if !role.Valid() {
		return utils.Fail(c, http.StatusBadRequest, utils.CodeValidation, "unknown role")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Fail(c, http.StatusNotFound, utils.CodeNotFound, "user not found")
		}
		h.Logger.Error("admin: update role failed", "err", err)
		return utils.Internal(c)
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		h.Logger.Error("admin: reload user failed", "err", err)
		return utils.Internal(c)
	}
	return utils.OK(c, http.StatusOK, "role updated", toUserPayload(u))
}

// VerifyEmail marks a user's email address as confirmed.
func (h *AdminHandler) VerifyEmail(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, utils.CodeValidation, "invalid user id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.MarkEmailVerified(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Fail(c, http.StatusNotFound, utils.CodeNotFound, "user not found")
		}
		h.Logger.Error("admin: verify email failed", "err", err)
		return utils.Internal(c)
	}
	return utils.OK(c, http.StatusOK, "email verified", nil)
}

// DeleteUser soft-deletes a user and revokes all of their sessions so the
// account stops authenticating immediately.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := parseUserID(c)
	if err != nil {
		return utils.Fail(c, http.StatusBadRequest, utils.CodeValidation, "invalid user id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Users.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Fail(c, http.StatusNotFound, utils.CodeNotFound, "user not found")
		}
		h.Logger.Error("admin: soft delete failed", "err", err)
		return utils.Internal(c)
	}
	if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
		h.Logger.Error("admin: revoke sessions after delete failed", "user_id", id, "err", err)
	}
	return utils.OK(c, http.StatusOK, "user deleted", nil)
}

func parseUserID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
