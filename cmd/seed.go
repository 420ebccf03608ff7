package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/axisbulk/axis/internal/config"
	"github.com/axisbulk/axis/internal/db"
	"github.com/axisbulk/axis/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with demo tenants and sender identities",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		sqlDB, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
			MaxOpenConns:    cfg.MySQL.MaxOpenConns,
			MaxIdleConns:    cfg.MySQL.MaxIdleConns,
			ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
			PingTimeout:     cfg.MySQL.PingTimeout,
		})
		if err != nil {
			return fmt.Errorf("mysql connect: %w", err)
		}
		defer sqlDB.Close()

		log.Println(">> Seeding demo tenants...")

		if err := seedTenants(sqlDB); err != nil {
			return err
		}
		if err := seedSenders(sqlDB); err != nil {
			return err
		}

		log.Println(">> Seed completed")
		return nil
	},
}

// seedTenants inserts deterministic demo tenants (idempotent).
func seedTenants(dbx *sqlx.DB) error {
	tenants := []model.Tenant{
		{
			Name:    "Axis Admin",
			APIKey:  "00000000000000000000000000000000",
			Role:    model.RoleAdmin,
			Status:  model.TenantActive,
			Balance: 0,
			Rate:    0,
		},
		{
			Name:         "Savanna Retail",
			APIKey:       "11111111111111111111111111111111",
			Role:         model.RoleTenant,
			Status:       model.TenantActive,
			Balance:      100000,
			Rate:         28,
			RateLimitRPS: intptr(20),
		},
		{
			Name:         "Kilima Microfinance",
			APIKey:       "22222222222222222222222222222222",
			Role:         model.RoleTenant,
			Status:       model.TenantActive,
			Balance:      50000,
			Rate:         30,
			RateLimitRPS: intptr(50),
		},
		{
			Name:    "Dormant Traders",
			APIKey:  "33333333333333333333333333333333",
			Role:    model.RoleTenant,
			Status:  model.TenantSuspended,
			Balance: 1200,
			Rate:    28,
		},
	}

	// idempotent upsert based on api_key (UNIQUE)
	const q = `
INSERT INTO tenants
    (name, api_key, role, status, balance, rate, rate_limit_rps, created_at, updated_at)
VALUES
    (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
    name        = VALUES(name),
    role        = VALUES(role),
    status      = VALUES(status),
    rate        = VALUES(rate),
    rate_limit_rps = VALUES(rate_limit_rps),
    updated_at  = VALUES(updated_at)
`
	tx, err := dbx.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now()
	for _, t := range tenants {
		if _, err := tx.Exec(q, t.Name, t.APIKey, t.Role, t.Status, t.Balance, t.Rate, t.RateLimitRPS, now, now); err != nil {
			return fmt.Errorf("insert tenant %q: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tenants: %w", err)
	}
	return nil
}

// seedSenders gives each active demo tenant one pre-approved identity.
func seedSenders(dbx *sqlx.DB) error {
	const q = `
INSERT INTO sender_identities (tenant_id, name, status, approved_by, approved_at, created_at)
SELECT t.id, 'AXISDEMO', 'approved', 1, NOW(), NOW()
FROM tenants t
LEFT JOIN sender_identities s ON s.tenant_id = t.id AND s.name = 'AXISDEMO'
WHERE t.role = 'tenant' AND t.status = 'active' AND s.id IS NULL
`
	if _, err := dbx.Exec(q); err != nil {
		return fmt.Errorf("seed senders: %w", err)
	}
	return nil
}

func intptr(i int) *int { return &i }
