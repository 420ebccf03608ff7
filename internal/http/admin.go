package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/axisbulk/axis/internal/http/middleware"
	"github.com/axisbulk/axis/internal/service/identity"
	"github.com/axisbulk/axis/internal/service/ledger"
	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func senderTransitionHandler(identitySvc *identity.Service, approve bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		adminID, _ := middleware.TenantIDFromCtx(c)
		id, ok := pathID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad id"})
		}

		var err error
		if approve {
			err = identitySvc.Approve(c.Request().Context(), adminID, id)
		} else {
			err = identitySvc.Reject(c.Request().Context(), adminID, id)
		}
		if err != nil {
			if errors.Is(err, identity.ErrNotPending) {
				return c.JSON(http.StatusConflict, map[string]string{"error": "not_pending"})
			}
			log.Errorf("sender transition failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	}
}

func approveTopupHandler(ledgerSvc *ledger.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		adminID, _ := middleware.TenantIDFromCtx(c)
		id, ok := pathID(c)
		if !ok {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad id"})
		}

		t, err := ledgerSvc.ApproveTopup(c.Request().Context(), adminID, id)
		if err != nil {
			if errors.Is(err, ledger.ErrTransactionNotFound) {
				return c.JSON(http.StatusNotFound, map[string]string{"error": "transaction not found"})
			}
			if errors.Is(err, ledger.ErrAlreadyApproved) {
				return c.JSON(http.StatusConflict, map[string]string{"error": "already_approved"})
			}
			log.Errorf("approve topup failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusOK, t)
	}
}
