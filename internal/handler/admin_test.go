package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvoxel/auth-service/internal/utils"
)

func newAdminApp(t *testing.T) (*testApp, string) {
	t.Helper()
	app := newTestApp(t)
	app.register(t, "root@example.com")
	app.promote(t, "root@example.com")
	return app, app.loginToken(t, "root@example.com")
}

func TestAdminRoutesRejectUserRole(t *testing.T) {
	app := newTestApp(t)
	userAccess, _ := app.register(t, "plain@example.com")

	rec := app.do(http.MethodGet, "/admin/users", userAccess, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	env := decodeEnv(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, utils.CodeForbidden, env.Error.Code)

	rec = app.do(http.MethodGet, "/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no token short-circuits before the role guard")
}

func TestAdminListUsers(t *testing.T) {
	app, admin := newAdminApp(t)
	app.register(t, "one@example.com")
	app.register(t, "two@example.com")

	rec := app.do(http.MethodGet, "/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnv(t, rec)
	users, ok := env.Data.([]any)
	require.True(t, ok)
	assert.Len(t, users, 3)
	assert.NotContains(t, rec.Body.String(), "passwordHash")
}

func TestAdminUpdateRole(t *testing.T) {
	app, admin := newAdminApp(t)
	app.register(t, "promo@example.com")
	u, err := app.users.GetByEmail(context.Background(), "promo@example.com")
	require.NoError(t, err)

	rec := app.do(http.MethodPatch, fmt.Sprintf("/admin/users/%d/role", u.ID), admin,
		map[string]string{"role": "admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := dataMap(t, decodeEnv(t, rec))
	assert.Equal(t, "ADMIN", data["role"], "role input is normalized")

	rec = app.do(http.MethodPatch, fmt.Sprintf("/admin/users/%d/role", u.ID), admin,
		map[string]string{"role": "SUPERUSER"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(http.MethodPatch, "/admin/users/9999/role", admin,
		map[string]string{"role": "USER"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminVerifyEmail(t *testing.T) {
	app, admin := newAdminApp(t)
	app.register(t, "unverified@example.com")
	u, err := app.users.GetByEmail(context.Background(), "unverified@example.com")
	require.NoError(t, err)
	require.False(t, u.EmailVerified)

	rec := app.do(http.MethodPost, fmt.Sprintf("/admin/users/%d/verify-email", u.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	u, err = app.users.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)
}

func TestAdminDeleteUserRevokesSessions(t *testing.T) {
	app, admin := newAdminApp(t)
	app.register(t, "victim@example.com")
	u, err := app.users.GetByEmail(context.Background(), "victim@example.com")
	require.NoError(t, err)
	require.Equal(t, 1, app.tokens.activeCount(u.ID))

	rec := app.do(http.MethodDelete, fmt.Sprintf("/admin/users/%d", u.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Zero(t, app.tokens.activeCount(u.ID), "deleting an account ends its sessions")

	login := app.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "victim@example.com", "password": "correct-horse",
	})
	assert.Equal(t, http.StatusUnauthorized, login.Code, "soft-deleted users cannot log in")

	rec = app.do(http.MethodDelete, "/admin/users/9999", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
