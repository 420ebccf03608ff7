package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/axisbulk/axis/internal/model"
	"github.com/jmoiron/sqlx"
)

// SendersRepository defines persistence for sender_identities.
type SendersRepository interface {
	// GetApproved returns the approved identity matching (tenant, name), or nil.
	// When tx is non-nil the read participates in the caller's transaction.
	GetApproved(ctx context.Context, tx *sqlx.Tx, tenantID int64, name string) (*model.SenderIdentity, error)
	Insert(ctx context.Context, tenantID int64, name string) (int64, error)
	// Transition flips status from -> to and returns the affected row count.
	// Zero means the identity was not in the expected state.
	Transition(ctx context.Context, id int64, from, to model.SenderStatus, adminID int64) (int64, error)
	ListByTenant(ctx context.Context, tenantID int64) ([]model.SenderIdentity, error)
}

type SendersRepositoryImpl struct {
	db *sqlx.DB
}

func NewSendersRepository(db *sqlx.DB) *SendersRepositoryImpl {
	return &SendersRepositoryImpl{db: db}
}

var _ SendersRepository = (*SendersRepositoryImpl)(nil)

func (r *SendersRepositoryImpl) GetApproved(ctx context.Context, tx *sqlx.Tx, tenantID int64, name string) (*model.SenderIdentity, error) {
	const q = `
		SELECT id, tenant_id, name, status, approved_by, approved_at, created_at
		  FROM sender_identities
		 WHERE tenant_id = ? AND name = ? AND status = 'approved'
		 LIMIT 1
	`
	var s model.SenderIdentity
	var err error
	if tx != nil {
		err = tx.QueryRowxContext(ctx, q, tenantID, name).StructScan(&s)
	} else {
		err = r.db.GetContext(ctx, &s, q, tenantID, name)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SendersRepositoryImpl) Insert(ctx context.Context, tenantID int64, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sender_identities (tenant_id, name, status, created_at)
		VALUES (?, ?, 'pending', NOW())
	`, tenantID, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SendersRepositoryImpl) Transition(ctx context.Context, id int64, from, to model.SenderStatus, adminID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sender_identities
		   SET status = ?, approved_by = ?, approved_at = NOW()
		 WHERE id = ? AND status = ?
	`, to.String(), adminID, id, from.String())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SendersRepositoryImpl) ListByTenant(ctx context.Context, tenantID int64) ([]model.SenderIdentity, error) {
	var rows []model.SenderIdentity
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, tenant_id, name, status, approved_by, approved_at, created_at
		  FROM sender_identities
		 WHERE tenant_id = ?
		 ORDER BY created_at DESC
	`, tenantID)
	return rows, err
}
