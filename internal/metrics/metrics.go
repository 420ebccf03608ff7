package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axis_messages_total",
			Help: "Message send attempts by outcome",
		},
		[]string{"status"}, // sent|failed
	)

	CampaignsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axis_campaigns_total",
			Help: "Campaign state transitions",
		},
		[]string{"status"}, // scheduled|in_progress|completed|failed
	)

	WebhooksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "axis_delivery_webhooks_total",
			Help: "Delivery callbacks by result",
		},
		[]string{"result"}, // applied|unknown_status|no_match|error
	)
)

func MustRegister(r prometheus.Registerer) {
	r.MustRegister(
		MessagesTotal,
		CampaignsTotal,
		WebhooksTotal,
	)
}
