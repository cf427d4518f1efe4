package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadscout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS leads (
	id               TEXT PRIMARY KEY,
	seq              INTEGER NOT NULL,
	dedup_key        TEXT NOT NULL UNIQUE,
	name             TEXT NOT NULL,
	phone            TEXT NOT NULL,
	category         TEXT NOT NULL,
	channel          TEXT NOT NULL DEFAULT '',
	message_link     TEXT NOT NULL DEFAULT '',
	original_message TEXT NOT NULL DEFAULT '',
	date_added       DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_leads_seq ON leads(seq);
`

const sqliteInsertLead = `INSERT INTO leads
	(id, seq, dedup_key, name, phone, category, channel, message_link, original_message, date_added)
	VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM leads), ?, ?, ?, ?, ?, ?, ?, ?)`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) AppendLead(ctx context.Context, l model.Lead) error {
	_, err := s.db.ExecContext(ctx, sqliteInsertLead, leadArgs(l)...)
	if err != nil {
		return eris.Wrapf(err, "sqlite: insert lead %q", l.Name)
	}
	return nil
}

func (s *SQLiteStore) ImportLeads(ctx context.Context, leads []model.Lead) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin import")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, sqliteInsertLead+" ON CONFLICT(dedup_key) DO NOTHING")
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare import")
	}
	defer stmt.Close() //nolint:errcheck

	added := 0
	for _, l := range leads {
		res, err := stmt.ExecContext(ctx, leadArgs(l)...)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: import lead %q", l.Name)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit import")
	}
	return added, nil
}

func (s *SQLiteStore) LoadLeads(ctx context.Context) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, phone, category, channel, message_link, original_message, date_added
		FROM leads ORDER BY seq`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load leads")
	}
	defer rows.Close() //nolint:errcheck

	var leads []model.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		leads = append(leads, l)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: iterate leads")
}

func (s *SQLiteStore) CountLeads(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sqlite: count leads")
	}
	return n, nil
}

// leadArgs returns the insert arguments, seq excluded.
func leadArgs(l model.Lead) []any {
	return []any{
		uuid.New().String(),
		l.Key(),
		l.Name,
		l.Phone,
		l.Category,
		l.Channel,
		l.MessageLink,
		l.OriginalMessage,
		l.DateAdded.UTC(),
	}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanLead(row scannable) (model.Lead, error) {
	var l model.Lead
	err := row.Scan(&l.Name, &l.Phone, &l.Category, &l.Channel, &l.MessageLink, &l.OriginalMessage, &l.DateAdded)
	return l, err
}
