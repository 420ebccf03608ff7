package model

import "time"

type SenderStatus string

const (
	SenderPending  SenderStatus = "pending"
	SenderApproved SenderStatus = "approved"
	SenderRejected SenderStatus = "rejected"
)

func (s SenderStatus) String() string { return string(s) }

// MaxSenderNameLen is the regulatory limit for alphanumeric source addresses.
const MaxSenderNameLen = 11

// SenderIdentity is a brand name a tenant originates traffic under.
// Status moves pending -> approved|rejected by admin action only.
type SenderIdentity struct {
	ID         int64        `db:"id"`
	TenantID   int64        `db:"tenant_id"`
	Name       string       `db:"name"`
	Status     SenderStatus `db:"status"`
	ApprovedBy *int64       `db:"approved_by"`
	ApprovedAt *time.Time   `db:"approved_at"`
	CreatedAt  time.Time    `db:"created_at"`
}
