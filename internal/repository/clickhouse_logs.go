package repository

import (
	"context"

	"github.com/axisbulk/axis/internal/model"
	"github.com/jmoiron/sqlx"
)

// CHMessageLogsRepository lists message history from ClickHouse (final view).
// The view is fed by CDC from message_logs; this side is read-only reporting.
type CHMessageLogsRepository interface {
	ListByTenant(ctx context.Context, tenantID int64, campaignID, destAddr string, status model.MessageStatus, limit, offset int) ([]model.MessageLog, error)
}

type chMessageLogsRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewCHMessageLogsRepository(ch *sqlx.DB) CHMessageLogsRepository {
	return &chMessageLogsRepository{ch: ch}
}

func (r *chMessageLogsRepository) ListByTenant(ctx context.Context, tenantID int64, campaignID, destAddr string, status model.MessageStatus, limit, offset int) ([]model.MessageLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT id, campaign_id, tenant_id, dest_addr, text, status, cost, segments, provider_request_id, error_code, error_reason, created_at, updated_at
		FROM axis.message_logs_latest
		WHERE tenant_id = ?
	`
	args := []any{tenantID}

	if campaignID != "" {
		q += " AND campaign_id = ?"
		args = append(args, campaignID)
	}
	if status != "" {
		q += " AND status = ?"
		args = append(args, status.String())
	}
	if destAddr != "" {
		q += " AND dest_addr = ?"
		args = append(args, destAddr)
	}

	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []model.MessageLog
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
