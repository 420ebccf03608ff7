package http

import (
	"errors"
	"net/http"

	"github.com/axisbulk/axis/internal/http/middleware"
	"github.com/axisbulk/axis/internal/service/ledger"
	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

func submitTopupHandler(ledgerSvc *ledger.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID, ok := middleware.TenantIDFromCtx(c)
		if !ok || tenantID <= 0 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		var req ledger.TopupRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		t, err := ledgerSvc.SubmitTopup(c.Request().Context(), tenantID, req)
		if err != nil {
			if errors.Is(err, ledger.ErrDuplicateReference) {
				return c.JSON(http.StatusConflict, map[string]string{"error": "duplicate_reference"})
			}
			if errors.Is(err, ledger.ErrInvalidTopup) {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			}
			log.Errorf("submit topup failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusCreated, t)
	}
}
