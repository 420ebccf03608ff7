package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/axisbulk/axis/internal/model"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

const mysqlErrDuplicateEntry = 1062

// IsDuplicate reports whether err is a unique-constraint violation.
func IsDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

// TransactionsRepository defines persistence for top-up transactions.
// reference carries a UNIQUE key, so replayed submissions surface as
// duplicate-entry errors (check with IsDuplicate).
type TransactionsRepository interface {
	Insert(ctx context.Context, t model.Transaction) (int64, error)
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Transaction, error)
	// MarkApproved flips pending -> approved and returns the affected count.
	// Zero means the transaction was already approved (or missing).
	MarkApproved(ctx context.Context, tx *sqlx.Tx, id, adminID int64) (int64, error)
}

type TransactionsRepositoryImpl struct {
	db *sqlx.DB
}

func NewTransactionsRepository(db *sqlx.DB) *TransactionsRepositoryImpl {
	return &TransactionsRepositoryImpl{db: db}
}

var _ TransactionsRepository = (*TransactionsRepositoryImpl)(nil)

func (r *TransactionsRepositoryImpl) Insert(ctx context.Context, t model.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (tenant_id, amount, credits, reference, provider, status, created_at)
		VALUES (?, ?, ?, ?, ?, 'pending', NOW())
	`, t.TenantID, t.Amount, t.Credits, t.Reference, t.Provider)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *TransactionsRepositoryImpl) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Transaction, error) {
	var t model.Transaction
	err := tx.QueryRowxContext(ctx, `
		SELECT id, tenant_id, amount, credits, reference, provider, status, approved_by, approved_at, created_at
		  FROM transactions
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

func (r *TransactionsRepositoryImpl) MarkApproved(ctx context.Context, tx *sqlx.Tx, id, adminID int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE transactions
		   SET status = 'approved', approved_by = ?, approved_at = NOW()
		 WHERE id = ? AND status = 'pending'
	`, adminID, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
