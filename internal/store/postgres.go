package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/db"
	"github.com/sells-group/leadscout/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a small connection pool. The
// listener writes one lead at a time, so a handful of connections is plenty.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MinConns = 1
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	seq              BIGSERIAL,
	dedup_key        TEXT NOT NULL UNIQUE,
	name             TEXT NOT NULL,
	phone            TEXT NOT NULL,
	category         TEXT NOT NULL,
	channel          TEXT NOT NULL DEFAULT '',
	message_link     TEXT NOT NULL DEFAULT '',
	original_message TEXT NOT NULL DEFAULT '',
	date_added       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_seq ON leads(seq);
CREATE INDEX IF NOT EXISTS idx_leads_date_added ON leads(date_added);
`

var leadColumns = []string{
	"id", "dedup_key", "name", "phone", "category",
	"channel", "message_link", "original_message", "date_added",
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) AppendLead(ctx context.Context, l model.Lead) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO leads (id, dedup_key, name, phone, category, channel, message_link, original_message, date_added)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		leadArgs(l)...,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: insert lead %q", l.Name)
	}
	return nil
}

func (s *PostgresStore) ImportLeads(ctx context.Context, leads []model.Lead) (int, error) {
	rows := make([][]any, 0, len(leads))
	for _, l := range newLeads(leads, make(map[string]struct{})) {
		rows = append(rows, leadArgs(l))
	}
	n, err := db.BulkInsertNew(ctx, s.pool, db.InsertConfig{
		Table:        "leads",
		Columns:      leadColumns,
		ConflictKeys: []string{"dedup_key"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: import leads")
	}
	return int(n), nil
}

func (s *PostgresStore) LoadLeads(ctx context.Context) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, phone, category, channel, message_link, original_message, date_added
		FROM leads ORDER BY seq`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: load leads")
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: iterate leads")
}

func (s *PostgresStore) CountLeads(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "postgres: count leads")
	}
	return n, nil
}
