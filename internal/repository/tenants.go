package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/axisbulk/axis/internal/model"
	"github.com/jmoiron/sqlx"
)

// TenantsRepository defines persistence for the tenants table. The balance
// column is only ever touched through GetForUpdate + AdjustBalance inside a
// caller-owned transaction.
type TenantsRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*model.Tenant, error)
	GetByID(ctx context.Context, id int64) (*model.Tenant, error)
	// GetForUpdate locks the tenant row and returns current balance/status/rate.
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Tenant, error)
	// AdjustBalance applies a signed delta to the locked balance.
	AdjustBalance(ctx context.Context, tx *sqlx.Tx, id int64, delta int64) error
}

type TenantsRepositoryImpl struct {
	db *sqlx.DB
}

func NewTenantsRepository(db *sqlx.DB) *TenantsRepositoryImpl {
	return &TenantsRepositoryImpl{db: db}
}

var _ TenantsRepository = (*TenantsRepositoryImpl)(nil)

func (r *TenantsRepositoryImpl) GetByAPIKey(ctx context.Context, apiKey string) (*model.Tenant, error) {
	var t model.Tenant
	err := r.db.GetContext(ctx, &t, `
		SELECT id, name, api_key, role, status, balance, rate, rate_limit_rps, created_at, updated_at
		  FROM tenants
		 WHERE api_key = ? LIMIT 1
	`, apiKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenantsRepositoryImpl) GetByID(ctx context.Context, id int64) (*model.Tenant, error) {
	var t model.Tenant
	err := r.db.GetContext(ctx, &t, `
		SELECT id, name, api_key, role, status, balance, rate, rate_limit_rps, created_at, updated_at
		  FROM tenants
		 WHERE id = ? LIMIT 1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenantsRepositoryImpl) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Tenant, error) {
	var t model.Tenant
	err := tx.QueryRowxContext(ctx, `
		SELECT id, name, api_key, role, status, balance, rate, rate_limit_rps, created_at, updated_at
		  FROM tenants
		 WHERE id = ?
		   FOR UPDATE
	`, id).StructScan(&t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TenantsRepositoryImpl) AdjustBalance(ctx context.Context, tx *sqlx.Tx, id int64, delta int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE tenants
		   SET balance = balance + ?, updated_at = NOW()
		 WHERE id = ?
	`, delta, id)
	return err
}
