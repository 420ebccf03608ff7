package http

import (
	"errors"
	"net/http"

	"github.com/axisbulk/axis/internal/http/middleware"
	"github.com/axisbulk/axis/internal/service/identity"
	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

type submitSenderReq struct {
	Name string `json:"name"`
}

func submitSenderHandler(identitySvc *identity.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID, ok := middleware.TenantIDFromCtx(c)
		if !ok || tenantID <= 0 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		var req submitSenderReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		s, err := identitySvc.Submit(c.Request().Context(), tenantID, req.Name)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidName) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid_name"})
			}
			if errors.Is(err, identity.ErrNameTaken) {
				return c.JSON(http.StatusConflict, map[string]string{"error": "name_taken"})
			}
			log.Errorf("submit sender failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusCreated, s)
	}
}

func listSendersHandler(identitySvc *identity.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID, ok := middleware.TenantIDFromCtx(c)
		if !ok || tenantID <= 0 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		rows, err := identitySvc.List(c.Request().Context(), tenantID)
		if err != nil {
			log.Errorf("list senders failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"count":   len(rows),
			"results": rows,
		})
	}
}
