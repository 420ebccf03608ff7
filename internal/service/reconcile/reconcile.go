// Package reconcile applies asynchronous delivery reports to message logs.
// Callbacks arrive at-least-once and out of order; everything here is
// idempotent and tolerant of rows that do not (yet) exist.
package reconcile

import (
	"context"
	"strings"

	"github.com/axisbulk/axis/internal/metrics"
	"github.com/axisbulk/axis/internal/model"
	"github.com/axisbulk/axis/internal/repository"
	"go.uber.org/zap"
)

// Callback is the provider's delivery notification body.
type Callback struct {
	RequestID  string `json:"request_id"`
	StatusDesc string `json:"status_desc"`
	DestAddr   string `json:"dest_addr"`
}

type Outcome string

const (
	OutcomeApplied       Outcome = "applied"
	OutcomeUnknownStatus Outcome = "unknown_status"
	OutcomeNoMatch       Outcome = "no_match"
)

// statusMap is the closed, exhaustive mapping from provider status
// descriptions to internal statuses. Anything not listed is acknowledged
// and ignored so the provider stops retrying.
var statusMap = map[string]model.MessageStatus{
	"DELIVRD":                model.MessageDelivered,
	"DELIVERED":              model.MessageDelivered,
	"DELIVERED SUCCESSFULLY": model.MessageDelivered,
	"ACCEPTED":               model.MessageSent,
	"ENROUTE":                model.MessageSent,
	"SENT":                   model.MessageSent,
	"PENDING DELIVERY":       model.MessageSent,
	"UNDELIV":                model.MessageFailed,
	"UNDELIVERABLE":          model.MessageFailed,
	"FAILED":                 model.MessageFailed,
	"EXPIRED":                model.MessageFailed,
	"REJECTED":               model.MessageFailed,
	"DELETED":                model.MessageFailed,
}

// MapStatus resolves a provider status description. ok=false means the
// description is outside the known set.
func MapStatus(desc string) (model.MessageStatus, bool) {
	st, ok := statusMap[strings.ToUpper(strings.TrimSpace(desc))]
	return st, ok
}

type Service struct {
	logs repository.MessageLogsRepository
	log  *zap.Logger
}

func New(logs repository.MessageLogsRepository, log *zap.Logger) *Service {
	return &Service{logs: logs, log: log}
}

// Apply updates the matching message log. It only returns an error on a
// storage failure; unknown statuses and missing rows are normal outcomes
// (duplicate or out-of-order callbacks) and must not fail the webhook.
func (s *Service) Apply(ctx context.Context, cb Callback) (Outcome, error) {
	status, ok := MapStatus(cb.StatusDesc)
	if !ok {
		s.log.Info("unrecognized delivery status, ignoring",
			zap.String("request_id", cb.RequestID),
			zap.String("status_desc", cb.StatusDesc),
		)
		metrics.WebhooksTotal.WithLabelValues(string(OutcomeUnknownStatus)).Inc()
		return OutcomeUnknownStatus, nil
	}

	affected, err := s.logs.UpdateByProviderRequestID(ctx, cb.RequestID, status)
	if err != nil {
		metrics.WebhooksTotal.WithLabelValues("error").Inc()
		return "", err
	}
	if affected == 0 {
		s.log.Warn("delivery report matched no message log",
			zap.String("request_id", cb.RequestID),
			zap.String("dest_addr", cb.DestAddr),
			zap.String("status", status.String()),
		)
		metrics.WebhooksTotal.WithLabelValues(string(OutcomeNoMatch)).Inc()
		return OutcomeNoMatch, nil
	}

	metrics.WebhooksTotal.WithLabelValues(string(OutcomeApplied)).Inc()
	return OutcomeApplied, nil
}
