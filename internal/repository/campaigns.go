package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/axisbulk/axis/internal/model"
	"github.com/jmoiron/sqlx"
)

// CampaignsRepository defines persistence for campaigns and their recipient set.
type CampaignsRepository interface {
	Insert(ctx context.Context, tx *sqlx.Tx, c model.Campaign) error
	InsertRecipients(ctx context.Context, tx *sqlx.Tx, campaignID string, recs []model.Recipient) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	ListRecipients(ctx context.Context, campaignID string) ([]model.Recipient, error)
	// MarkInProgress is the scheduled -> in_progress CAS. False means the
	// campaign was already claimed or is terminal.
	MarkInProgress(ctx context.Context, id string) (bool, error)
	// Finish moves an in_progress campaign to completed or failed.
	Finish(ctx context.Context, id string, status model.CampaignStatus) error
	// StatusCounts returns per-status message log counts for one campaign.
	StatusCounts(ctx context.Context, campaignID string) (map[string]int, error)
}

type CampaignsRepositoryImpl struct {
	db *sqlx.DB
}

func NewCampaignsRepository(db *sqlx.DB) *CampaignsRepositoryImpl {
	return &CampaignsRepositoryImpl{db: db}
}

var _ CampaignsRepository = (*CampaignsRepositoryImpl)(nil)

func (r *CampaignsRepositoryImpl) Insert(ctx context.Context, tx *sqlx.Tx, c model.Campaign) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO campaigns
		    (id, tenant_id, name, sender_name, message, status, recipient_count, segments, total_cost, created_at, updated_at)
		VALUES
		    (?,  ?,         ?,    ?,           ?,       'scheduled', ?,          ?,        ?,          NOW(),      NOW())
	`, c.ID, c.TenantID, c.Name, c.SenderName, c.Message, c.RecipientCount, c.Segments, c.TotalCost)
	return err
}

func (r *CampaignsRepositoryImpl) InsertRecipients(ctx context.Context, tx *sqlx.Tx, campaignID string, recs []model.Recipient) error {
	if len(recs) == 0 {
		return nil
	}

	var sb strings.Builder
	args := make([]any, 0, len(recs)*4)

	sb.WriteString(`INSERT INTO campaign_recipients (campaign_id, dest_addr, first_name, last_name) VALUES `)
	for i, rec := range recs {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?)")
		args = append(args, campaignID, rec.DestAddr, rec.FirstName, rec.LastName)
	}

	_, err := tx.ExecContext(ctx, sb.String(), args...)
	return err
}

func (r *CampaignsRepositoryImpl) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	var c model.Campaign
	err := r.db.GetContext(ctx, &c, `
		SELECT id, tenant_id, name, sender_name, message, status, recipient_count, segments, total_cost, created_at, updated_at
		  FROM campaigns
		 WHERE id = ? LIMIT 1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignsRepositoryImpl) ListRecipients(ctx context.Context, campaignID string) ([]model.Recipient, error) {
	var rows []model.Recipient
	err := r.db.SelectContext(ctx, &rows, `
		SELECT campaign_id, dest_addr, first_name, last_name
		  FROM campaign_recipients
		 WHERE campaign_id = ?
	`, campaignID)
	return rows, err
}

func (r *CampaignsRepositoryImpl) MarkInProgress(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		   SET status = 'in_progress', updated_at = NOW()
		 WHERE id = ? AND status = 'scheduled'
	`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *CampaignsRepositoryImpl) Finish(ctx context.Context, id string, status model.CampaignStatus) error {
	if !status.Terminal() {
		return errors.New("campaigns: finish requires a terminal status")
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE campaigns
		   SET status = ?, updated_at = NOW()
		 WHERE id = ? AND status = 'in_progress'
	`, status.String(), id)
	return err
}

func (r *CampaignsRepositoryImpl) StatusCounts(ctx context.Context, campaignID string) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT status, COUNT(*)
		  FROM message_logs
		 WHERE campaign_id = ?
		 GROUP BY status
	`, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{
		"total":     0,
		"pending":   0,
		"sent":      0,
		"delivered": 0,
		"failed":    0,
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		if _, ok := counts[status]; ok {
			counts[status] = n
		}
		counts["total"] += n
	}
	return counts, rows.Err()
}
