// Package campaign drives funded batch sends through their state machine:
// scheduled -> in_progress -> completed|failed. Funding (confirm) is one
// atomic transaction; dispatch (process) fans recipients out over a bounded
// worker pool and records one message log row per attempt.
package campaign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/axisbulk/axis/internal/gateway"
	"github.com/axisbulk/axis/internal/metrics"
	"github.com/axisbulk/axis/internal/model"
	"github.com/axisbulk/axis/internal/repository"
	"github.com/axisbulk/axis/internal/service/ledger"
	"github.com/axisbulk/axis/internal/service/quote"
	"github.com/axisbulk/axis/internal/util"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const DispatchTopic = "campaign.dispatch"

var (
	ErrEmptyMessage      = errors.New("campaign message is empty")
	ErrEmptyName         = errors.New("campaign name is empty")
	ErrNoValidRecipients = errors.New("no valid recipients after cleaning")
	ErrCampaignNotFound  = errors.New("campaign not found")
)

type RecipientInput struct {
	DestAddr  string `json:"dest_addr"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ConfirmRequest struct {
	Name       string           `json:"name"`
	SenderName string           `json:"sender_name"`
	Message    string           `json:"message"`
	Recipients []RecipientInput `json:"recipients"`
}

type Service struct {
	db        *sqlx.DB
	tenants   repository.TenantsRepository
	senders   repository.SendersRepository
	campaigns repository.CampaignsRepository
	logs      repository.MessageLogsRepository
	outbox    repository.OutboxRepository
	ledger    *ledger.Service
	gw        gateway.Client
	buyRate   int64
	workers   int
	log       *zap.Logger
}

func New(
	db *sqlx.DB,
	tenants repository.TenantsRepository,
	senders repository.SendersRepository,
	campaigns repository.CampaignsRepository,
	logs repository.MessageLogsRepository,
	outbox repository.OutboxRepository,
	ledgerSvc *ledger.Service,
	gw gateway.Client,
	buyRate int64,
	workers int,
	log *zap.Logger,
) *Service {
	if workers <= 0 {
		workers = 8
	}
	return &Service{
		db:        db,
		tenants:   tenants,
		senders:   senders,
		campaigns: campaigns,
		logs:      logs,
		outbox:    outbox,
		ledger:    ledgerSvc,
		gw:        gw,
		buyRate:   buyRate,
		workers:   workers,
		log:       log,
	}
}

// cleanInputs applies the same normalize/dedupe/filter pipeline as the quote
// service while keeping per-recipient template attributes attached.
func cleanInputs(in []RecipientInput) (valid []model.Recipient, duplicates, invalid int) {
	seen := make(map[string]struct{}, len(in))
	for _, rec := range in {
		digits := util.NormalizePhone(rec.DestAddr)
		if _, ok := seen[digits]; ok {
			duplicates++
			continue
		}
		seen[digits] = struct{}{}
		if !util.ValidPhone(digits) {
			invalid++
			continue
		}
		valid = append(valid, model.Recipient{
			DestAddr:  digits,
			FirstName: strings.TrimSpace(rec.FirstName),
			LastName:  strings.TrimSpace(rec.LastName),
		})
	}
	return valid, duplicates, invalid
}

// Confirm funds and creates a campaign in one transaction: sender gate,
// tenant lock, full-cost debit, campaign + recipient rows, outbox event.
// Any failure rolls the whole thing back; no campaign exists without funds
// already taken.
func (s *Service) Confirm(ctx context.Context, tenantID int64, req ConfirmRequest) (*model.Campaign, *quote.Quote, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Message = strings.TrimSpace(req.Message)
	req.SenderName = strings.TrimSpace(req.SenderName)
	if req.Name == "" {
		return nil, nil, ErrEmptyName
	}
	if req.Message == "" {
		return nil, nil, ErrEmptyMessage
	}

	valid, dups, invalid := cleanInputs(req.Recipients)
	if len(valid) == 0 {
		return nil, nil, ErrNoValidRecipients
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	ident, err := s.senders.GetApproved(ctx, tx, tenantID, req.SenderName)
	if err != nil {
		return nil, nil, fmt.Errorf("sender gate: %w", err)
	}
	if ident == nil {
		return nil, nil, quote.ErrSenderNotAuthorized
	}

	tenant, err := s.tenants.GetForUpdate(ctx, tx, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("tenant lock: %w", err)
	}
	if tenant == nil {
		return nil, nil, ledger.ErrTenantNotFound
	}

	phones := make([]string, len(valid))
	for i, rec := range valid {
		phones[i] = rec.DestAddr
	}
	q := quote.Compute(req.Message, phones, len(req.Recipients), dups, invalid, tenant.Rate, s.buyRate, tenant.Balance)

	if err := s.ledger.Debit(ctx, tx, tenantID, q.TenantCost); err != nil {
		return nil, nil, err
	}

	c := model.Campaign{
		ID:             util.New(),
		TenantID:       tenantID,
		Name:           req.Name,
		SenderName:     req.SenderName,
		Message:        req.Message,
		Status:         model.CampaignScheduled,
		RecipientCount: len(valid),
		Segments:       q.Segments,
		TotalCost:      q.TenantCost,
	}
	if err := s.campaigns.Insert(ctx, tx, c); err != nil {
		return nil, nil, fmt.Errorf("insert campaign: %w", err)
	}
	if err := s.campaigns.InsertRecipients(ctx, tx, c.ID, valid); err != nil {
		return nil, nil, fmt.Errorf("insert recipients: %w", err)
	}

	payload, err := json.Marshal(model.DispatchEnvelope{CampaignID: c.ID, TenantID: tenantID})
	if err != nil {
		return nil, nil, fmt.Errorf("marshal envelope: %w", err)
	}
	if err := s.outbox.Insert(ctx, tx, "campaign", c.ID, DispatchTopic, payload); err != nil {
		return nil, nil, fmt.Errorf("insert outbox: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	metrics.CampaignsTotal.WithLabelValues(model.CampaignScheduled.String()).Inc()
	return &c, q, nil
}

// render substitutes template placeholders and collapses whitespace.
func render(message string, rec model.Recipient) string {
	r := strings.NewReplacer(
		"{firstName}", rec.FirstName,
		"{lastName}", rec.LastName,
	)
	return strings.Join(strings.Fields(r.Replace(message)), " ")
}

// Process claims a scheduled campaign and attempts every recipient through
// the gateway. Gateway failures are recorded per recipient and never abort
// the batch; only an internal failure (log write, panic) marks the campaign
// failed. Safe to call twice: the scheduled -> in_progress CAS makes a
// duplicate delivery a no-op.
func (s *Service) Process(ctx context.Context, campaignID string) error {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("load campaign: %w", err)
	}
	if c == nil {
		return ErrCampaignNotFound
	}
	if c.Status.Terminal() {
		return nil
	}

	claimed, err := s.campaigns.MarkInProgress(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("claim campaign: %w", err)
	}
	if !claimed {
		s.log.Info("campaign already claimed, skipping", zap.String("campaign_id", campaignID))
		return nil
	}
	metrics.CampaignsTotal.WithLabelValues(model.CampaignInProgress.String()).Inc()

	recs, err := s.campaigns.ListRecipients(ctx, campaignID)
	if err != nil {
		s.finish(ctx, campaignID, model.CampaignFailed)
		return fmt.Errorf("load recipients: %w", err)
	}

	unitCost := int64(0)
	if c.RecipientCount > 0 {
		unitCost = c.TotalCost / int64(c.RecipientCount)
	}

	var (
		sent, failed atomic.Int64
		fatalOnce    sync.Once
		fatalErr     error
		wg           sync.WaitGroup
	)
	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	fatal := func(err error) {
		fatalOnce.Do(func() {
			fatalErr = err
			cancel()
		})
	}

	jobs := make(chan model.Recipient)
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					fatal(fmt.Errorf("dispatch panic: %v", r))
				}
			}()
			for rec := range jobs {
				if err := s.sendOne(poolCtx, c, rec, unitCost, &sent, &failed); err != nil {
					fatal(err)
					return
				}
			}
		}()
	}

feed:
	for _, rec := range recs {
		select {
		case <-poolCtx.Done():
			break feed
		case jobs <- rec:
		}
	}
	close(jobs)
	wg.Wait()

	if fatalErr != nil {
		s.finish(ctx, campaignID, model.CampaignFailed)
		return fmt.Errorf("campaign %s dispatch: %w", campaignID, fatalErr)
	}

	s.finish(ctx, campaignID, model.CampaignCompleted)
	s.log.Info("campaign dispatched",
		zap.String("campaign_id", campaignID),
		zap.Int64("sent", sent.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}

// sendOne renders, sends, and logs a single recipient attempt. A gateway
// failure produces a failed log row, not an error; only the log write itself
// can fail the batch.
func (s *Service) sendOne(ctx context.Context, c *model.Campaign, rec model.Recipient, unitCost int64, sent, failed *atomic.Int64) error {
	text := render(c.Message, rec)

	res := s.gw.Send(ctx, c.SenderName, text, []gateway.Recipient{
		{RecipientID: 1, DestAddr: rec.DestAddr},
	})

	m := model.MessageLog{
		ID:         util.New(),
		CampaignID: c.ID,
		TenantID:   c.TenantID,
		DestAddr:   rec.DestAddr,
		Text:       text,
		Cost:       unitCost,
		Segments:   c.Segments,
	}
	if res.Successful {
		m.Status = model.MessageSent
		m.ProviderRequestID = &res.RequestID
		sent.Add(1)
		metrics.MessagesTotal.WithLabelValues(model.MessageSent.String()).Inc()
	} else {
		m.Status = model.MessageFailed
		code := fmt.Sprintf("%d", res.Code)
		reason := res.Message
		m.ErrorCode = &code
		m.ErrorReason = &reason
		failed.Add(1)
		metrics.MessagesTotal.WithLabelValues(model.MessageFailed.String()).Inc()
		s.log.Warn("gateway send failed",
			zap.String("campaign_id", c.ID),
			zap.String("dest_addr", rec.DestAddr),
			zap.Int("code", res.Code),
			zap.String("reason", res.Message),
		)
	}

	if err := s.logs.Insert(ctx, m); err != nil {
		return fmt.Errorf("insert message log: %w", err)
	}
	return nil
}

func (s *Service) finish(ctx context.Context, campaignID string, status model.CampaignStatus) {
	if err := s.campaigns.Finish(ctx, campaignID, status); err != nil {
		s.log.Error("finish campaign failed",
			zap.String("campaign_id", campaignID),
			zap.String("status", status.String()),
			zap.Error(err),
		)
		return
	}
	metrics.CampaignsTotal.WithLabelValues(status.String()).Inc()
}
