package model

import "time"

type CampaignStatus string

const (
	CampaignScheduled  CampaignStatus = "scheduled"
	CampaignInProgress CampaignStatus = "in_progress"
	CampaignCompleted  CampaignStatus = "completed"
	CampaignFailed     CampaignStatus = "failed"
)

func (s CampaignStatus) String() string { return string(s) }

func (s CampaignStatus) Valid() bool {
	return s == CampaignScheduled || s == CampaignInProgress ||
		s == CampaignCompleted || s == CampaignFailed
}

// Terminal reports whether no further transition is legal.
func (s CampaignStatus) Terminal() bool {
	return s == CampaignCompleted || s == CampaignFailed
}

// Campaign is a funded batch send. A row exists only if the owning tenant's
// balance was already debited for TotalCost.
type Campaign struct {
	ID             string         `db:"id"`
	TenantID       int64          `db:"tenant_id"`
	Name           string         `db:"name"`
	SenderName     string         `db:"sender_name"`
	Message        string         `db:"message"`
	Status         CampaignStatus `db:"status"`
	RecipientCount int            `db:"recipient_count"`
	Segments       int            `db:"segments"`
	TotalCost      int64          `db:"total_cost"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

// Recipient is one destination of a campaign, with optional attributes used
// for template substitution.
type Recipient struct {
	CampaignID string `db:"campaign_id" json:"-"`
	DestAddr   string `db:"dest_addr" json:"dest_addr"`
	FirstName  string `db:"first_name" json:"first_name,omitempty"`
	LastName   string `db:"last_name" json:"last_name,omitempty"`
}
