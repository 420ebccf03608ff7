package identity

import (
	"context"
	"strings"
	"testing"

	"github.com/axisbulk/axis/internal/model"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSenders struct {
	insertID  int64
	insertErr error
	affected  int64
	lastFrom  model.SenderStatus
	lastTo    model.SenderStatus
}

func (f *fakeSenders) GetApproved(ctx context.Context, tx *sqlx.Tx, tenantID int64, name string) (*model.SenderIdentity, error) {
	return nil, nil
}
func (f *fakeSenders) Insert(ctx context.Context, tenantID int64, name string) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	return f.insertID, nil
}
func (f *fakeSenders) Transition(ctx context.Context, id int64, from, to model.SenderStatus, adminID int64) (int64, error) {
	f.lastFrom, f.lastTo = from, to
	return f.affected, nil
}
func (f *fakeSenders) ListByTenant(ctx context.Context, tenantID int64) ([]model.SenderIdentity, error) {
	return nil, nil
}

func TestSubmitHappyPath(t *testing.T) {
	svc := New(&fakeSenders{insertID: 7})

	ident, err := svc.Submit(context.Background(), 1, "  AXISDEMO ")
	require.NoError(t, err)
	assert.Equal(t, int64(7), ident.ID)
	assert.Equal(t, "AXISDEMO", ident.Name, "name is trimmed")
	assert.Equal(t, model.SenderPending, ident.Status)
}

func TestSubmitNameLength(t *testing.T) {
	svc := New(&fakeSenders{insertID: 1})

	_, err := svc.Submit(context.Background(), 1, "")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.Submit(context.Background(), 1, "   ")
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.Submit(context.Background(), 1, strings.Repeat("A", 12))
	assert.ErrorIs(t, err, ErrInvalidName)

	_, err = svc.Submit(context.Background(), 1, strings.Repeat("A", 11))
	assert.NoError(t, err, "11 characters is the upper bound")
}

func TestSubmitDuplicateName(t *testing.T) {
	svc := New(&fakeSenders{insertErr: &mysql.MySQLError{Number: 1062}})

	_, err := svc.Submit(context.Background(), 1, "AXISDEMO")
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestApproveRequiresPending(t *testing.T) {
	senders := &fakeSenders{affected: 0}
	svc := New(senders)

	err := svc.Approve(context.Background(), 99, 7)
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Equal(t, model.SenderPending, senders.lastFrom)
	assert.Equal(t, model.SenderApproved, senders.lastTo)
}

func TestRejectTransitions(t *testing.T) {
	senders := &fakeSenders{affected: 1}
	svc := New(senders)

	require.NoError(t, svc.Reject(context.Background(), 99, 7))
	assert.Equal(t, model.SenderRejected, senders.lastTo)
}
