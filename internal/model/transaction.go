package model

import "time"

type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "pending"
	TransactionApproved TransactionStatus = "approved"
)

func (s TransactionStatus) String() string { return string(s) }

// Transaction is a manual top-up claim. Reference is unique; a duplicate
// reference is rejected to block replay. Approval credits the tenant balance
// in the same database transaction that flips the status.
type Transaction struct {
	ID         int64             `db:"id"`
	TenantID   int64             `db:"tenant_id"`
	Amount     int64             `db:"amount"`
	Credits    int64             `db:"credits"`
	Reference  string            `db:"reference"`
	Provider   string            `db:"provider"`
	Status     TransactionStatus `db:"status"`
	ApprovedBy *int64            `db:"approved_by"`
	ApprovedAt *time.Time        `db:"approved_at"`
	CreatedAt  time.Time         `db:"created_at"`
}
