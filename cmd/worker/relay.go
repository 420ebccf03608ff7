package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/axisbulk/axis/internal/config"
	"github.com/axisbulk/axis/internal/db"
	"github.com/axisbulk/axis/internal/kafka"
	"github.com/axisbulk/axis/internal/repository"
	"github.com/axisbulk/axis/internal/service/campaign"
	"github.com/axisbulk/axis/internal/worker"
	"github.com/spf13/cobra"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Run outbox relay (outbox table -> Kafka)",
	RunE:  runRelay,
}

func runRelay(cmd *cobra.Command, args []string) error {
	// 1) load config
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
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

	outboxRepo := repository.NewOutboxRepository(dbx)

	// 3) kafka producer for the dispatch topic
	producer := kafka.NewProducer(cfg.Kafka.Brokers, campaign.DispatchTopic)
	defer producer.Close()

	relay := worker.NewOutboxRelay(outboxRepo, producer)
	if cfg.Dispatch.RelayInterval > 0 {
		relay.Interval = cfg.Dispatch.RelayInterval
	}
	if cfg.Dispatch.RelayBatch > 0 {
		relay.BatchSize = cfg.Dispatch.RelayBatch
	}

	// 4) graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf(">> outbox relay started topic=%s interval=%s batch=%d",
		campaign.DispatchTopic, relay.Interval, relay.BatchSize)

	return relay.Run(ctx)
}
