package repository

import (
	"context"

	"github.com/axisbulk/axis/internal/model"
	"github.com/jmoiron/sqlx"
)

// MessageLogsRepository defines persistence for the message_logs table, the
// per-recipient flight recorder. Rows are inserted at send time and updated
// once by reconciliation; they are never deleted.
type MessageLogsRepository interface {
	Insert(ctx context.Context, m model.MessageLog) error
	// UpdateByProviderRequestID applies a terminal carrier status to the row
	// carrying the given provider id and returns the affected count. Zero is
	// not an error: webhook delivery is at-least-once and may race or repeat.
	UpdateByProviderRequestID(ctx context.Context, requestID string, status model.MessageStatus) (int64, error)
}

type MessageLogsRepositoryImpl struct {
	db *sqlx.DB
}

func NewMessageLogsRepository(db *sqlx.DB) *MessageLogsRepositoryImpl {
	return &MessageLogsRepositoryImpl{db: db}
}

var _ MessageLogsRepository = (*MessageLogsRepositoryImpl)(nil)

func (r *MessageLogsRepositoryImpl) Insert(ctx context.Context, m model.MessageLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO message_logs
		    (id, campaign_id, tenant_id, dest_addr, text, status, cost, segments, provider_request_id, error_code, error_reason, created_at, updated_at)
		VALUES
		    (?,  ?,           ?,         ?,         ?,    ?,      ?,    ?,        ?,                   ?,          ?,            NOW(),      NOW())
	`, m.ID, m.CampaignID, m.TenantID, m.DestAddr, m.Text, m.Status.String(), m.Cost, m.Segments, m.ProviderRequestID, m.ErrorCode, m.ErrorReason)
	return err
}

func (r *MessageLogsRepositoryImpl) UpdateByProviderRequestID(ctx context.Context, requestID string, status model.MessageStatus) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE message_logs
		   SET status = ?, updated_at = NOW()
		 WHERE provider_request_id = ?
	`, status.String(), requestID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
