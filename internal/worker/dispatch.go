package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/axisbulk/axis/internal/kafka"
	"github.com/axisbulk/axis/internal/model"
	"github.com/axisbulk/axis/internal/service/campaign"
)

// CampaignDispatcher consumes funded-campaign envelopes from Kafka and runs
// the orchestrator's Process on each. Messages are always committed:
// at-least-once delivery is safe because Process claims the campaign with a
// scheduled -> in_progress CAS.
type CampaignDispatcher struct {
	Consumer  *kafka.Consumer
	Campaigns *campaign.Service
}

func NewCampaignDispatcher(consumer *kafka.Consumer, campaigns *campaign.Service) *CampaignDispatcher {
	return &CampaignDispatcher{Consumer: consumer, Campaigns: campaigns}
}

// Run fetches and processes envelopes until ctx is cancelled.
func (d *CampaignDispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		m, err := d.Consumer.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Printf("[dispatch] kafka fetch err: %v", err)
			time.Sleep(200 * time.Millisecond)
			continue
		}

		d.processOne(ctx, m)
	}
}

func (d *CampaignDispatcher) processOne(ctx context.Context, m kafka.Message) {
	var env model.DispatchEnvelope
	if err := json.Unmarshal(m.Value, &env); err != nil || env.CampaignID == "" {
		_ = d.Consumer.Commit(ctx, m) // poison -> commit, skip
		log.Printf("[dispatch] bad envelope: %v", err)
		return
	}

	if err := d.Campaigns.Process(ctx, env.CampaignID); err != nil {
		// Process already moved the campaign to a terminal state where it
		// could; re-delivering the envelope would be a no-op anyway.
		log.Printf("[dispatch] campaign=%s err=%v", env.CampaignID, err)
	}

	if err := d.Consumer.Commit(ctx, m); err != nil {
		log.Printf("[dispatch] commit err: %v", err)
	}
}
