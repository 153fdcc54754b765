package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/nvoxel/auth-service/internal/middleware"
	"github.com/nvoxel/auth-service/internal/model"
	"github.com/nvoxel/auth-service/internal/repository"
	"github.com/nvoxel/auth-service/internal/utils"
)

// Profile returns a user by id. This route layers an ownership check on
// top of RBAC: any authenticated caller may read their own record, while
// reading someone else's requires ADMIN. The check compares the verified
// subject with the path parameter, not the role alone.
func (h *AuthHandler) Profile(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return utils.Fail(c, http.StatusBadRequest, utils.CodeValidation, "invalid user id")
	}

	callerID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.Fail(c, http.StatusUnauthorized, utils.CodeTokenInvalid, "unauthorized")
	}
	role, _ := middleware.CurrentRole(c)
	if callerID != id && !role.AtLeast(model.RoleAdmin) {
		return utils.Fail(c, http.StatusForbidden, utils.CodeForbidden, "forbidden")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.Fail(c, http.StatusNotFound, utils.CodeNotFound, "user not found")
		}
		h.Logger.Error("profile: load user failed", "err", err)
		return utils.Internal(c)
	}
	return utils.OK(c, http.StatusOK, "", toUserPayload(u))
}
