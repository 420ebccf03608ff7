package model

// DispatchEnvelope is the payload published to Kafka for a funded campaign.
type DispatchEnvelope struct {
	CampaignID string `json:"campaign_id"`
	TenantID   int64  `json:"tenant_id"`
}
