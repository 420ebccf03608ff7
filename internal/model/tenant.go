package model

import "time"

type TenantRole string

const (
	RoleTenant TenantRole = "tenant"
	RoleAdmin  TenantRole = "admin"
)

func (r TenantRole) String() string { return string(r) }

type TenantStatus string

const (
	TenantPending   TenantStatus = "pending"
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
	TenantDeleted   TenantStatus = "deleted"
)

func (s TenantStatus) String() string { return string(s) }

func (s TenantStatus) Valid() bool {
	return s == TenantPending || s == TenantActive || s == TenantSuspended || s == TenantDeleted
}

// Tenant is a reseller account. Balance and Rate are in minor currency units;
// Balance is mutated only through the ledger service.
type Tenant struct {
	ID           int64        `db:"id"`
	Name         string       `db:"name"`
	APIKey       string       `db:"api_key"`
	Role         TenantRole   `db:"role"`
	Status       TenantStatus `db:"status"`
	Balance      int64        `db:"balance"`
	Rate         int64        `db:"rate"` // sell price per segment
	RateLimitRPS *int         `db:"rate_limit_rps"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}
