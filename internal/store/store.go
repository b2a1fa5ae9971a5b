// Package store persists captured tips and the usage log, with SQLite and
// Postgres backends behind one interface.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/eleco-media/amaike/internal/config"
	"github.com/eleco-media/amaike/internal/model"
)

// ErrTipNotFound is returned when a tip id does not exist.
var ErrTipNotFound = eris.New("store: tip not found")

// ErrTipTerminal is returned when an update targets a submitted or failed
// tip. Terminal records are immutable.
var ErrTipTerminal = eris.New("store: tip already terminal")

// TipFilter specifies criteria for listing tips.
type TipFilter struct {
	Status model.TipStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the tip archive.
type Store interface {
	// Tips
	SaveTip(ctx context.Context, tip *model.TipRecord) error
	UpdateTipStatus(ctx context.Context, tipID string, status model.TipStatus, submissionID string) error
	GetTip(ctx context.Context, tipID string) (*model.TipRecord, error)
	ListTips(ctx context.Context, filter TipFilter) ([]model.TipRecord, error)

	// Usage log
	LogUsage(ctx context.Context, entry model.UsageEntry) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates the store backend selected by configuration.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	case "", "sqlite":
		dsn := cfg.DatabaseURL
		if dsn == "" {
			dsn = "amaike.db"
		}
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
