package model

import "time"

type MessageStatus string

const (
	MessagePending   MessageStatus = "pending"
	MessageSent      MessageStatus = "sent"
	MessageDelivered MessageStatus = "delivered"
	MessageFailed    MessageStatus = "failed"
)

func (s MessageStatus) String() string { return string(s) }

func (s MessageStatus) Valid() bool {
	return s == MessagePending || s == MessageSent || s == MessageDelivered || s == MessageFailed
}

// MessageLog is one row per recipient per send attempt. Rows are written at
// send time, updated once by reconciliation, and never deleted.
type MessageLog struct {
	ID                string        `db:"id"`
	CampaignID        string        `db:"campaign_id"`
	TenantID          int64         `db:"tenant_id"`
	DestAddr          string        `db:"dest_addr"`
	Text              string        `db:"text"`
	Status            MessageStatus `db:"status"`
	Cost              int64         `db:"cost"`
	Segments          int           `db:"segments"`
	ProviderRequestID *string       `db:"provider_request_id"` // unique once set
	ErrorCode         *string       `db:"error_code"`
	ErrorReason       *string       `db:"error_reason"`
	CreatedAt         time.Time     `db:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at"`
}
