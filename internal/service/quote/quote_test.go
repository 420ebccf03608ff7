package quote

import (
	"context"
	"strings"
	"testing"

	"github.com/axisbulk/axis/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegments(t *testing.T) {
	cases := []struct {
		runes int
		want  int
	}{
		{0, 1},
		{1, 1},
		{159, 1},
		{160, 1},
		{161, 2},
		{306, 2},
		{307, 3},
		{459, 3},
		{460, 4},
	}
	for _, tc := range cases {
		msg := strings.Repeat("a", tc.runes)
		assert.Equal(t, tc.want, Segments(msg), "runes=%d", tc.runes)
	}
}

func TestSegmentsCountsRunesNotBytes(t *testing.T) {
	// 160 two-byte runes still fit one part
	msg := strings.Repeat("ж", 160)
	assert.Equal(t, 1, Segments(msg))
}

func TestCleanRecipients(t *testing.T) {
	raw := []string{
		"+255 712-345-678", // valid
		"255712345678",     // duplicate of the first after normalization
		"0712345678",       // valid
		"123",              // too short
		"not-a-phone",      // normalizes to empty
	}

	valid, dups, invalid := CleanRecipients(raw)

	assert.Equal(t, []string{"255712345678", "0712345678"}, valid)
	assert.Equal(t, 1, dups)
	assert.Equal(t, 2, invalid)
}

func TestCleanRecipientsKeepsFirstSeenOrder(t *testing.T) {
	raw := []string{"255700000002", "255700000001", "255700000002"}
	valid, dups, invalid := CleanRecipients(raw)
	assert.Equal(t, []string{"255700000002", "255700000001"}, valid)
	assert.Equal(t, 1, dups)
	assert.Equal(t, 0, invalid)
}

func TestCompute(t *testing.T) {
	// 2 recipients * 1 segment: sell 30, buy 18
	q := Compute("hello", []string{"255700000001", "255700000002"}, 4, 1, 1, 30, 18, 100)

	assert.Equal(t, 4, q.TotalSubmitted)
	assert.Equal(t, 1, q.DuplicatesRemoved)
	assert.Equal(t, 1, q.InvalidFormats)
	assert.Equal(t, 1, q.Segments)
	assert.Equal(t, int64(60), q.TenantCost)
	assert.Equal(t, int64(36), q.PlatformCost)
	assert.Equal(t, int64(24), q.Profit)
	assert.True(t, q.CanAfford)
}

func TestComputeMultiSegment(t *testing.T) {
	msg := strings.Repeat("a", 161) // 2 segments
	q := Compute(msg, []string{"255700000001"}, 1, 0, 0, 30, 18, 59)

	assert.Equal(t, 2, q.Segments)
	assert.Equal(t, int64(60), q.TenantCost)
	assert.False(t, q.CanAfford, "balance 59 cannot cover 60")
}

func TestComputeExactBalanceAffords(t *testing.T) {
	q := Compute("hi", []string{"255700000001"}, 1, 0, 0, 30, 18, 30)
	assert.True(t, q.CanAfford)
}

type fakeTenants struct {
	tenant *model.Tenant
	err    error
}

func (f *fakeTenants) GetByAPIKey(ctx context.Context, apiKey string) (*model.Tenant, error) {
	return f.tenant, f.err
}
func (f *fakeTenants) GetByID(ctx context.Context, id int64) (*model.Tenant, error) {
	return f.tenant, f.err
}
func (f *fakeTenants) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Tenant, error) {
	return f.tenant, f.err
}
func (f *fakeTenants) AdjustBalance(ctx context.Context, tx *sqlx.Tx, id int64, delta int64) error {
	return f.err
}

type fakeSenders struct {
	approved *model.SenderIdentity
	err      error
}

func (f *fakeSenders) GetApproved(ctx context.Context, tx *sqlx.Tx, tenantID int64, name string) (*model.SenderIdentity, error) {
	return f.approved, f.err
}
func (f *fakeSenders) Insert(ctx context.Context, tenantID int64, name string) (int64, error) {
	return 0, f.err
}
func (f *fakeSenders) Transition(ctx context.Context, id int64, from, to model.SenderStatus, adminID int64) (int64, error) {
	return 0, f.err
}
func (f *fakeSenders) ListByTenant(ctx context.Context, tenantID int64) ([]model.SenderIdentity, error) {
	return nil, f.err
}

func TestQuoteRejectsUnapprovedSender(t *testing.T) {
	svc := New(&fakeTenants{}, &fakeSenders{approved: nil}, 18)

	_, err := svc.Quote(context.Background(), 1, Request{
		SenderName: "NOPE",
		Message:    "hello",
		Recipients: []string{"255700000001"},
	})
	assert.ErrorIs(t, err, ErrSenderNotAuthorized)
}

func TestQuoteHappyPath(t *testing.T) {
	tenants := &fakeTenants{tenant: &model.Tenant{
		ID: 1, Status: model.TenantActive, Rate: 30, Balance: 1000,
	}}
	senders := &fakeSenders{approved: &model.SenderIdentity{
		ID: 7, TenantID: 1, Name: "AXISDEMO", Status: model.SenderApproved,
	}}
	svc := New(tenants, senders, 18)

	q, err := svc.Quote(context.Background(), 1, Request{
		SenderName: "AXISDEMO",
		Message:    "hello",
		Recipients: []string{"255700000001", "255700000001", "bogus"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, q.TotalSubmitted)
	assert.Equal(t, []string{"255700000001"}, q.ValidRecipients)
	assert.Equal(t, 1, q.DuplicatesRemoved)
	assert.Equal(t, 1, q.InvalidFormats)
	assert.Equal(t, int64(30), q.TenantCost)
	assert.Equal(t, int64(1000), q.Balance)
	assert.True(t, q.CanAfford)
}
