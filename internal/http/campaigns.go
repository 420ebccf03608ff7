package http

import (
	"errors"
	"net/http"

	"github.com/axisbulk/axis/internal/http/middleware"
	"github.com/axisbulk/axis/internal/repository"
	"github.com/axisbulk/axis/internal/service/campaign"
	"github.com/axisbulk/axis/internal/service/ledger"
	"github.com/axisbulk/axis/internal/service/quote"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

func quoteHandler(quoteSvc *quote.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID, ok := middleware.TenantIDFromCtx(c)
		if !ok || tenantID <= 0 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		var req quote.Request
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}
		if req.Message == "" || req.SenderName == "" || len(req.Recipients) == 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "sender_name, message and recipients are required"})
		}

		q, err := quoteSvc.Quote(c.Request().Context(), tenantID, req)
		if err != nil {
			if errors.Is(err, quote.ErrSenderNotAuthorized) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "sender_not_authorized"})
			}
			log.Errorf("quote failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "quote failed"})
		}

		return c.JSON(http.StatusOK, q)
	}
}

func confirmCampaignHandler(campaignSvc *campaign.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID, ok := middleware.TenantIDFromCtx(c)
		if !ok || tenantID <= 0 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		var req campaign.ConfirmRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "bad request"})
		}

		cmp, q, err := campaignSvc.Confirm(c.Request().Context(), tenantID, req)
		if err != nil {
			switch {
			case errors.Is(err, campaign.ErrEmptyName),
				errors.Is(err, campaign.ErrEmptyMessage),
				errors.Is(err, campaign.ErrNoValidRecipients):
				return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
			case errors.Is(err, quote.ErrSenderNotAuthorized):
				return c.JSON(http.StatusForbidden, map[string]string{"error": "sender_not_authorized"})
			case errors.Is(err, ledger.ErrTenantInactive):
				return c.JSON(http.StatusForbidden, map[string]string{"error": "tenant_inactive"})
			case errors.Is(err, ledger.ErrInsufficientFunds):
				return c.JSON(http.StatusPaymentRequired, map[string]any{
					"error":       "insufficient_funds",
					"description": "balance is not enough to fund the campaign",
				})
			}
			log.Errorf("confirm campaign failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusCreated, map[string]any{
			"campaign": cmp,
			"quote":    q,
		})
	}
}

func campaignDetailsHandler(campaigns repository.CampaignsRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID, ok := middleware.TenantIDFromCtx(c)
		if !ok || tenantID <= 0 {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}

		id := c.Param("id")
		cmp, err := campaigns.GetByID(c.Request().Context(), id)
		if err != nil {
			log.Errorf("load campaign failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}
		if cmp == nil || cmp.TenantID != tenantID {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "campaign not found"})
		}

		stats, err := campaigns.StatusCounts(c.Request().Context(), id)
		if err != nil {
			log.Errorf("campaign stats failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"campaign": cmp,
			"stats":    stats,
		})
	}
}
