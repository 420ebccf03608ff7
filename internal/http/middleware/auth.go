package middleware

import (
	"net/http"
	"strings"

	"github.com/axisbulk/axis/internal/model"
	"github.com/axisbulk/axis/internal/repository"
	echo "github.com/labstack/echo/v4"
)

// TenantIDFromCtx extracts the authenticated tenant id set by APIKeyMiddleware.
func TenantIDFromCtx(c echo.Context) (int64, bool) {
	v := c.Get("tenant_id")
	id, ok := v.(int64)
	return id, ok
}

// RoleFromCtx extracts the authenticated tenant role.
func RoleFromCtx(c echo.Context) (model.TenantRole, bool) {
	v := c.Get("tenant_role")
	role, ok := v.(model.TenantRole)
	return role, ok
}

// APIKeyMiddleware authenticates requests using the X-API-Key header. On
// success it stores (tenant_id, tenant_role) in context; non-active accounts
// are rejected here so core operations can trust what they receive.
func APIKeyMiddleware(tenants repository.TenantsRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := strings.TrimSpace(c.Request().Header.Get("X-API-Key"))
			if key == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing api key"})
			}
			t, err := tenants.GetByAPIKey(c.Request().Context(), key)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "auth error"})
			}
			if t == nil || t.Status != model.TenantActive {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid api key"})
			}
			c.Set("tenant_id", t.ID)
			c.Set("tenant_role", t.Role)
			if t.RateLimitRPS != nil {
				c.Set("tenant_rps", *t.RateLimitRPS)
			}
			return next(c)
		}
	}
}

// AdminMiddleware gates admin-only routes. Runs after APIKeyMiddleware.
func AdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := RoleFromCtx(c)
			if !ok || role != model.RoleAdmin {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "admin only"})
			}
			return next(c)
		}
	}
}
