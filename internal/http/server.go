package http

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/axisbulk/axis/internal/config"
	"github.com/axisbulk/axis/internal/gateway"
	"github.com/axisbulk/axis/internal/http/middleware"
	"github.com/axisbulk/axis/internal/logger"
	"github.com/axisbulk/axis/internal/metrics"
	"github.com/axisbulk/axis/internal/repository"
	"github.com/axisbulk/axis/internal/service/campaign"
	"github.com/axisbulk/axis/internal/service/identity"
	"github.com/axisbulk/axis/internal/service/ledger"
	"github.com/axisbulk/axis/internal/service/quote"
	"github.com/axisbulk/axis/internal/service/reconcile"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, mysqlDB, clickhouseDB *sqlx.DB, rds *redis.Client) *Server {
	// repos (MySQL)
	tenantsRepo := repository.NewTenantsRepository(mysqlDB)
	sendersRepo := repository.NewSendersRepository(mysqlDB)
	campaignsRepo := repository.NewCampaignsRepository(mysqlDB)
	logsRepo := repository.NewMessageLogsRepository(mysqlDB)
	txnsRepo := repository.NewTransactionsRepository(mysqlDB)
	outboxRepo := repository.NewOutboxRepository(mysqlDB)

	// repos (ClickHouse)
	chLogsRepo := repository.NewCHMessageLogsRepository(clickhouseDB)

	// gateway client
	gw := gateway.NewHTTPClient(
		cfg.Gateway.BaseURL,
		cfg.Gateway.SendPath,
		cfg.Gateway.APIKey,
		cfg.Gateway.SecretKey,
		cfg.Gateway.Timeout,
	)

	// services
	ledgerSvc := ledger.New(mysqlDB, tenantsRepo, txnsRepo)
	quoteSvc := quote.New(tenantsRepo, sendersRepo, cfg.Pricing.BuyRate)
	identitySvc := identity.New(sendersRepo)
	reconcileSvc := reconcile.New(logsRepo, logger.Log)
	campaignSvc := campaign.New(
		mysqlDB,
		tenantsRepo,
		sendersRepo,
		campaignsRepo,
		logsRepo,
		outboxRepo,
		ledgerSvc,
		gw,
		cfg.Pricing.BuyRate,
		cfg.Dispatch.Workers,
		logger.Log,
	)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// inbound delivery reports carry their own shared-secret token
	e.POST("/v1/webhooks/delivery", deliveryWebhookHandler(reconcileSvc, cfg.Webhook.Token))

	// middlewares
	authMW := middleware.APIKeyMiddleware(tenantsRepo)
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          rds,
		DefaultRPS:     cfg.RateLimit.RPS,
		KeyPrefix:      "rl:tenant:",
		Window:         time.Second,
		RetryAfterHint: true,
	})

	// routes
	v1 := e.Group("/v1", authMW, rlMW)
	v1.POST("/campaigns/quote", quoteHandler(quoteSvc))
	v1.POST("/campaigns", confirmCampaignHandler(campaignSvc))
	v1.GET("/campaigns/:id", campaignDetailsHandler(campaignsRepo))
	v1.POST("/senders", submitSenderHandler(identitySvc))
	v1.GET("/senders", listSendersHandler(identitySvc))
	v1.POST("/topups", submitTopupHandler(ledgerSvc))
	v1.GET("/reports/messages", listMessageLogsHandler(chLogsRepo))

	admin := e.Group("/v1/admin", authMW, middleware.AdminMiddleware())
	admin.POST("/senders/:id/approve", senderTransitionHandler(identitySvc, true))
	admin.POST("/senders/:id/reject", senderTransitionHandler(identitySvc, false))
	admin.POST("/transactions/:id/approve", approveTopupHandler(ledgerSvc))

	return &Server{e: e}
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
