// Package ledger owns every mutation of tenant balances. Debits and credits
// run inside a caller- or self-owned transaction so no reader ever observes a
// partially applied balance.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/axisbulk/axis/internal/model"
	"github.com/axisbulk/axis/internal/repository"
	"github.com/jmoiron/sqlx"
)

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrTenantInactive      = errors.New("tenant is not active")
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrDuplicateReference  = errors.New("duplicate transaction reference")
	ErrInvalidTopup        = errors.New("invalid topup request")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAlreadyApproved     = errors.New("transaction already approved")
)

type Service struct {
	db      *sqlx.DB
	tenants repository.TenantsRepository
	txns    repository.TransactionsRepository
}

func New(db *sqlx.DB, tenants repository.TenantsRepository, txns repository.TransactionsRepository) *Service {
	return &Service{db: db, tenants: tenants, txns: txns}
}

// Debit decrements the tenant balance inside the caller's transaction. The
// FOR UPDATE read and both guards share that transaction, so two concurrent
// debits can never both pass against a stale balance.
func (s *Service) Debit(ctx context.Context, tx *sqlx.Tx, tenantID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("ledger: non-positive debit amount %d", amount)
	}

	tenant, err := s.tenants.GetForUpdate(ctx, tx, tenantID)
	if err != nil {
		return fmt.Errorf("tenant lock: %w", err)
	}
	if tenant == nil {
		return ErrTenantNotFound
	}
	if tenant.Status != model.TenantActive {
		return ErrTenantInactive
	}
	if tenant.Balance < amount {
		return ErrInsufficientFunds
	}

	return s.tenants.AdjustBalance(ctx, tx, tenantID, -amount)
}

// Credit increments the tenant balance unconditionally.
func (s *Service) Credit(ctx context.Context, tx *sqlx.Tx, tenantID, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("ledger: non-positive credit amount %d", amount)
	}
	return s.tenants.AdjustBalance(ctx, tx, tenantID, amount)
}

type TopupRequest struct {
	Amount    int64  `json:"amount"`
	Credits   int64  `json:"credits"`
	Reference string `json:"reference"`
	Provider  string `json:"provider"`
}

// SubmitTopup records a pending top-up claim. A replayed external reference
// is rejected via the unique key on transactions.reference.
func (s *Service) SubmitTopup(ctx context.Context, tenantID int64, req TopupRequest) (*model.Transaction, error) {
	req.Reference = strings.TrimSpace(req.Reference)
	if req.Amount <= 0 || req.Credits <= 0 || req.Reference == "" || len(req.Reference) > 128 {
		return nil, ErrInvalidTopup
	}

	t := model.Transaction{
		TenantID:  tenantID,
		Amount:    req.Amount,
		Credits:   req.Credits,
		Reference: req.Reference,
		Provider:  req.Provider,
		Status:    model.TransactionPending,
	}
	id, err := s.txns.Insert(ctx, t)
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, ErrDuplicateReference
		}
		return nil, fmt.Errorf("insert transaction: %w", err)
	}
	t.ID = id
	return &t, nil
}

// ApproveTopup flips a pending transaction to approved and credits the tenant
// in one transaction. A second approval of the same id is rejected; the flip
// is an update-with-filter so a concurrent approval loses cleanly.
func (s *Service) ApproveTopup(ctx context.Context, adminID, txID int64) (*model.Transaction, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	t, err := s.txns.GetForUpdate(ctx, tx, txID)
	if err != nil {
		return nil, fmt.Errorf("transaction lock: %w", err)
	}
	if t == nil {
		return nil, ErrTransactionNotFound
	}
	if t.Status == model.TransactionApproved {
		return nil, ErrAlreadyApproved
	}

	affected, err := s.txns.MarkApproved(ctx, tx, txID, adminID)
	if err != nil {
		return nil, fmt.Errorf("mark approved: %w", err)
	}
	if affected == 0 {
		return nil, ErrAlreadyApproved
	}

	if err := s.Credit(ctx, tx, t.TenantID, t.Credits); err != nil {
		return nil, fmt.Errorf("credit tenant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	t.Status = model.TransactionApproved
	return t, nil
}
