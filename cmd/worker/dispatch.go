package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/axisbulk/axis/internal/config"
	"github.com/axisbulk/axis/internal/db"
	"github.com/axisbulk/axis/internal/gateway"
	"github.com/axisbulk/axis/internal/kafka"
	"github.com/axisbulk/axis/internal/logger"
	"github.com/axisbulk/axis/internal/metrics"
	"github.com/axisbulk/axis/internal/repository"
	"github.com/axisbulk/axis/internal/service/campaign"
	"github.com/axisbulk/axis/internal/service/ledger"
	"github.com/axisbulk/axis/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Run campaign dispatcher (Kafka -> SMS gateway)",
	RunE:  runDispatch,
}

func runDispatch(cmd *cobra.Command, args []string) error {
	// 1) load config
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Log.Level)
	defer logger.Sync()
	metrics.MustRegister(prometheus.DefaultRegisterer)

	// sanity on pricing
	if cfg.Pricing.BuyRate <= 0 {
		return fmt.Errorf("invalid pricing: buy_rate=%d", cfg.Pricing.BuyRate)
	}

	// 2) DB connection (MySQL)
	dbx, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
		MaxOpenConns:    cfg.MySQL.MaxOpenConns,
		MaxIdleConns:    cfg.MySQL.MaxIdleConns,
		ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
		PingTimeout:     cfg.MySQL.PingTimeout,
	})
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
	}
	defer dbx.Close()

	// 3) repositories
	tenantsRepo := repository.NewTenantsRepository(dbx)
	sendersRepo := repository.NewSendersRepository(dbx)
	campaignsRepo := repository.NewCampaignsRepository(dbx)
	logsRepo := repository.NewMessageLogsRepository(dbx)
	outboxRepo := repository.NewOutboxRepository(dbx)
	txnsRepo := repository.NewTransactionsRepository(dbx)

	// 4) upstream gateway client
	gw := gateway.NewHTTPClient(
		cfg.Gateway.BaseURL,
		cfg.Gateway.SendPath,
		cfg.Gateway.APIKey,
		cfg.Gateway.SecretKey,
		cfg.Gateway.Timeout,
	)

	ledgerSvc := ledger.New(dbx, tenantsRepo, txnsRepo)
	campaignSvc := campaign.New(
		dbx,
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

	// 5) kafka consumer
	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = "axis-dispatch"
	}

	consumer := kafka.NewConsumerFromConfig(kafka.Config{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          campaign.DispatchTopic,
		GroupID:        groupID,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
	})
	defer consumer.Close()

	d := worker.NewCampaignDispatcher(consumer, campaignSvc)

	// 6) graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf(">> dispatcher started topic=%s group=%s workers=%d",
		campaign.DispatchTopic, groupID, cfg.Dispatch.Workers)

	return d.Run(ctx)
}
