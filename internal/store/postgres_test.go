package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadscout/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS leads`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendLead(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	l := sampleLead("OKEY", "+998901194777")

	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(pgxmock.AnyArg(), "+998901194777|okey", "OKEY", "+998901194777", "Снеки",
			"Food B2B", "https://t.me/food_b2b/42", l.OriginalMessage, l.DateAdded.UTC()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.AppendLead(context.Background(), l))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_AppendLead_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO leads`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(fmt.Errorf("connection reset"))

	err := s.AppendLead(context.Background(), sampleLead("OKEY", "+998901194777"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `postgres: insert lead "OKEY"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadLeads(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	l := sampleLead("OKEY", "+998901194777")

	rows := pgxmock.NewRows([]string{"name", "phone", "category", "channel", "message_link", "original_message", "date_added"}).
		AddRow(l.Name, l.Phone, l.Category, l.Channel, l.MessageLink, l.OriginalMessage, l.DateAdded).
		AddRow("Korzinka", "+998712000000", "Напитки", "Drinks", "N/A", "water", l.DateAdded)
	mock.ExpectQuery(`SELECT name, phone, category, channel, message_link, original_message, date_added\s+FROM leads ORDER BY seq`).
		WillReturnRows(rows)

	leads, err := s.LoadLeads(context.Background())
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, l, leads[0])
	assert.Equal(t, model.LinkUnavailable, leads[1].MessageLink)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadLeads_Error(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM leads`).WillReturnError(pgx.ErrTxClosed)

	_, err := s.LoadLeads(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: load leads")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CountLeads(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM leads`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	n, err := s.CountLeads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ImportLeads(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_insert_leads"}, leadColumns).WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "leads" .* ON CONFLICT \("dedup_key"\) DO NOTHING`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := s.ImportLeads(context.Background(), []model.Lead{
		sampleLead("OKEY", "+998901194777"),
		sampleLead("okey", "+998901194777"),
		sampleLead("Korzinka", "+998712000000"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ImportLeads_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	n, err := s.ImportLeads(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
