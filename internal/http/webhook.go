package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/axisbulk/axis/internal/service/reconcile"
	echo "github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// deliveryWebhookHandler receives carrier delivery reports. Except for a bad
// token, it always acknowledges with 200: the provider retries non-2xx
// responses and a persistent internal error would otherwise turn into an
// unbounded redelivery storm.
func deliveryWebhookHandler(reconcileSvc *reconcile.Service, token string) echo.HandlerFunc {
	return func(c echo.Context) error {
		got := c.QueryParam("token")
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
		}

		var cb reconcile.Callback
		if err := c.Bind(&cb); err != nil || cb.RequestID == "" {
			// malformed body: acknowledge so the provider drops it
			return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
		}

		outcome, err := reconcileSvc.Apply(c.Request().Context(), cb)
		if err != nil {
			log.Errorf("delivery reconcile failed: request_id=%s err=%v", cb.RequestID, err)
			return c.JSON(http.StatusOK, map[string]string{"status": "error"})
		}

		return c.JSON(http.StatusOK, map[string]string{"status": string(outcome)})
	}
}
