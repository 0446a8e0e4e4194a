package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spizzerp/CampaignNotionAutomation/internal/model"
)

func newPostgresLedger(t *testing.T) (*PostgresLedger, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	return &PostgresLedger{DB: conn}, mock
}

func TestPostgresLedger_LookupMissingChild(t *testing.T) {
	ledger, mock := newPostgresLedger(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM processed_children")).
		WithArgs("c1", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"campaign_id", "child_id", "entry_id", "created_at"}))

	rec, err := ledger.Lookup(context.Background(), "c1", "p1")

	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_LookupFound(t *testing.T) {
	ledger, mock := newPostgresLedger(t)
	created := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM processed_children")).
		WithArgs("c1", "p1").
		WillReturnRows(sqlmock.NewRows([]string{"campaign_id", "child_id", "entry_id", "created_at"}).
			AddRow("c1", "p1", "e1", created))

	rec, err := ledger.Lookup(context.Background(), "c1", "p1")

	require.NoError(t, err)
	assert.Equal(t, &model.LedgerRecord{CampaignID: "c1", ChildID: "p1", EntryID: "e1", CreatedAt: created}, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedger_LookupError(t *testing.T) {
	ledger, mock := newPostgresLedger(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM processed_children")).WillReturnError(errors.New("connection reset"))

	rec, err := ledger.Lookup(context.Background(), "c1", "p1")

	assert.Nil(t, rec)
	assert.EqualError(t, err, "connection reset")
}

func TestPostgresLedger_RecordKeepsExistingRow(t *testing.T) {
	ledger, mock := newPostgresLedger(t)
	insert := regexp.QuoteMeta("ON CONFLICT (campaign_id, child_id) DO NOTHING")
	mock.ExpectExec(insert).
		WithArgs("c1", "p1", "e1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// a second record for the same child is a no-op insert, not an error
	mock.ExpectExec(insert).
		WithArgs("c1", "p1", "e2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectClose()

	require.NoError(t, ledger.Record(context.Background(), model.LedgerRecord{CampaignID: "c1", ChildID: "p1", EntryID: "e1"}))
	require.NoError(t, ledger.Record(context.Background(), model.LedgerRecord{CampaignID: "c1", ChildID: "p1", EntryID: "e2"}))
	require.NoError(t, ledger.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
