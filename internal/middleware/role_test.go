package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvoxel/auth-service/internal/model"
)

func invokeGuard(t *testing.T, guard echo.MiddlewareFunc, role interface{}) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != nil {
		c.Set(ctxRole, role)
	}
	h := guard(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	require.NoError(t, h(c))
	return rec.Code
}

func TestRequireRoleHonorsPrivilegeOrder(t *testing.T) {
	tests := []struct {
		name  string
		guard echo.MiddlewareFunc
		role  interface{}
		want  int
	}{
		{"user passes user guard", RequireUser(), model.RoleUser, http.StatusOK},
		{"admin passes user guard", RequireUser(), model.RoleAdmin, http.StatusOK},
		{"user denied by admin guard", RequireAdmin(), model.RoleUser, http.StatusForbidden},
		{"admin passes admin guard", RequireAdmin(), model.RoleAdmin, http.StatusOK},
		{"missing role is denied", RequireUser(), nil, http.StatusForbidden},
		{"unknown role is denied", RequireUser(), model.Role("GUEST"), http.StatusForbidden},
		{"any admits user", RequireAny(), model.RoleUser, http.StatusOK},
		{"any admits admin", RequireAny(), model.RoleAdmin, http.StatusOK},
		{"any denies missing role", RequireAny(), nil, http.StatusForbidden},
		{"exact match denies higher role", RequireExactRole(model.RoleUser), model.RoleAdmin, http.StatusForbidden},
		{"exact match admits same role", RequireExactRole(model.RoleUser), model.RoleUser, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, invokeGuard(t, tt.guard, tt.role))
		})
	}
}
