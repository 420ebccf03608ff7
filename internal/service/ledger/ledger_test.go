package ledger

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/axisbulk/axis/internal/model"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTenants struct {
	tenant *model.Tenant
	deltas []int64
}

func (f *fakeTenants) GetByAPIKey(ctx context.Context, apiKey string) (*model.Tenant, error) {
	return f.tenant, nil
}
func (f *fakeTenants) GetByID(ctx context.Context, id int64) (*model.Tenant, error) {
	return f.tenant, nil
}
func (f *fakeTenants) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Tenant, error) {
	return f.tenant, nil
}
func (f *fakeTenants) AdjustBalance(ctx context.Context, tx *sqlx.Tx, id int64, delta int64) error {
	f.deltas = append(f.deltas, delta)
	return nil
}

type fakeTxns struct {
	insertID  int64
	insertErr error
	stored    *model.Transaction
	approved  int64
}

func (f *fakeTxns) Insert(ctx context.Context, t model.Transaction) (int64, error) {
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	return f.insertID, nil
}
func (f *fakeTxns) GetForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Transaction, error) {
	return f.stored, nil
}
func (f *fakeTxns) MarkApproved(ctx context.Context, tx *sqlx.Tx, id, adminID int64) (int64, error) {
	return f.approved, nil
}

func activeTenant(balance int64) *model.Tenant {
	return &model.Tenant{ID: 1, Status: model.TenantActive, Balance: balance, Rate: 30}
}

func TestDebitHappyPath(t *testing.T) {
	tenants := &fakeTenants{tenant: activeTenant(100)}
	svc := New(nil, tenants, &fakeTxns{})

	err := svc.Debit(context.Background(), nil, 1, 60)
	require.NoError(t, err)
	assert.Equal(t, []int64{-60}, tenants.deltas)
}

func TestDebitExactBalance(t *testing.T) {
	tenants := &fakeTenants{tenant: activeTenant(60)}
	svc := New(nil, tenants, &fakeTxns{})

	require.NoError(t, svc.Debit(context.Background(), nil, 1, 60))
}

func TestDebitInsufficientFunds(t *testing.T) {
	tenants := &fakeTenants{tenant: activeTenant(59)}
	svc := New(nil, tenants, &fakeTxns{})

	err := svc.Debit(context.Background(), nil, 1, 60)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Empty(t, tenants.deltas, "balance must not change on a refused debit")
}

func TestDebitInactiveTenant(t *testing.T) {
	tenant := activeTenant(1000)
	tenant.Status = model.TenantSuspended
	svc := New(nil, &fakeTenants{tenant: tenant}, &fakeTxns{})

	err := svc.Debit(context.Background(), nil, 1, 10)
	assert.ErrorIs(t, err, ErrTenantInactive)
}

func TestDebitUnknownTenant(t *testing.T) {
	svc := New(nil, &fakeTenants{tenant: nil}, &fakeTxns{})
	err := svc.Debit(context.Background(), nil, 99, 10)
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestDebitRejectsNonPositiveAmount(t *testing.T) {
	svc := New(nil, &fakeTenants{tenant: activeTenant(100)}, &fakeTxns{})
	assert.Error(t, svc.Debit(context.Background(), nil, 1, 0))
	assert.Error(t, svc.Debit(context.Background(), nil, 1, -5))
}

func TestCreditRejectsNonPositiveAmount(t *testing.T) {
	svc := New(nil, &fakeTenants{tenant: activeTenant(0)}, &fakeTxns{})
	assert.Error(t, svc.Credit(context.Background(), nil, 1, 0))
}

func TestSubmitTopupValidation(t *testing.T) {
	svc := New(nil, &fakeTenants{}, &fakeTxns{insertID: 1})

	cases := []TopupRequest{
		{Amount: 0, Credits: 10, Reference: "ref"},
		{Amount: 10, Credits: 0, Reference: "ref"},
		{Amount: 10, Credits: 10, Reference: "   "},
		{Amount: 10, Credits: 10, Reference: string(make([]byte, 129))},
	}
	for i, req := range cases {
		_, err := svc.SubmitTopup(context.Background(), 1, req)
		assert.ErrorIs(t, err, ErrInvalidTopup, "case %d", i)
	}
}

func TestSubmitTopupDuplicateReference(t *testing.T) {
	txns := &fakeTxns{insertErr: &mysql.MySQLError{Number: 1062}}
	svc := New(nil, &fakeTenants{}, txns)

	_, err := svc.SubmitTopup(context.Background(), 1, TopupRequest{
		Amount: 1000, Credits: 1000, Reference: "mpesa-abc123",
	})
	assert.ErrorIs(t, err, ErrDuplicateReference)
}

func TestSubmitTopupHappyPath(t *testing.T) {
	svc := New(nil, &fakeTenants{}, &fakeTxns{insertID: 42})

	tr, err := svc.SubmitTopup(context.Background(), 7, TopupRequest{
		Amount: 1000, Credits: 900, Reference: " mpesa-abc123 ", Provider: "mpesa",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), tr.ID)
	assert.Equal(t, int64(7), tr.TenantID)
	assert.Equal(t, "mpesa-abc123", tr.Reference, "reference is trimmed")
	assert.Equal(t, model.TransactionPending, tr.Status)
}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "mysql"), mock
}

func TestApproveTopupHappyPath(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	tenants := &fakeTenants{tenant: activeTenant(0)}
	txns := &fakeTxns{
		stored: &model.Transaction{
			ID: 5, TenantID: 1, Credits: 900, Status: model.TransactionPending,
		},
		approved: 1,
	}
	svc := New(db, tenants, txns)

	tr, err := svc.ApproveTopup(context.Background(), 99, 5)
	require.NoError(t, err)
	assert.Equal(t, model.TransactionApproved, tr.Status)
	assert.Equal(t, []int64{900}, tenants.deltas, "tenant credited with the transaction credits")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveTopupAlreadyApproved(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	txns := &fakeTxns{
		stored: &model.Transaction{ID: 5, TenantID: 1, Status: model.TransactionApproved},
	}
	svc := New(db, &fakeTenants{tenant: activeTenant(0)}, txns)

	_, err := svc.ApproveTopup(context.Background(), 99, 5)
	assert.ErrorIs(t, err, ErrAlreadyApproved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveTopupLostRace(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	// row reads pending but the filtered update hits zero rows: a concurrent
	// approval won between read and write
	txns := &fakeTxns{
		stored:   &model.Transaction{ID: 5, TenantID: 1, Status: model.TransactionPending},
		approved: 0,
	}
	tenants := &fakeTenants{tenant: activeTenant(0)}
	svc := New(db, tenants, txns)

	_, err := svc.ApproveTopup(context.Background(), 99, 5)
	assert.ErrorIs(t, err, ErrAlreadyApproved)
	assert.Empty(t, tenants.deltas, "no credit on a lost race")
}

func TestApproveTopupNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := New(db, &fakeTenants{}, &fakeTxns{stored: nil})
	_, err := svc.ApproveTopup(context.Background(), 99, 404)
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}
