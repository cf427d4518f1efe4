// Package store persists leads. Three drivers share one interface: an xlsx
// workbook, an embedded SQLite database and Postgres.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/model"
)

// Store defines durable lead storage.
type Store interface {
	// AppendLead writes one lead. It is not idempotent on its own; callers
	// dedup first.
	AppendLead(ctx context.Context, l model.Lead) error
	// ImportLeads writes leads whose dedup key is not stored yet and returns
	// how many were added.
	ImportLeads(ctx context.Context, leads []model.Lead) (int, error)
	// LoadLeads returns every stored lead in insertion order.
	LoadLeads(ctx context.Context) ([]model.Lead, error)
	CountLeads(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the store selected by cfg.Driver. Call Migrate before use.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "xlsx":
		return NewXLSX(cfg.Path), nil
	case "sqlite":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// newLeads returns the leads whose key is not in seen, dropping repeats
// within the batch too. seen is updated.
func newLeads(leads []model.Lead, seen map[string]struct{}) []model.Lead {
	var out []model.Lead
	for _, l := range leads {
		k := l.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, l)
	}
	return out
}
