// Package app assembles the ledger services for the configured storage backend.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/pocket/internal/config"
	"github.com/MrJamesThe3rd/pocket/internal/database"
	"github.com/MrJamesThe3rd/pocket/internal/export"
	"github.com/MrJamesThe3rd/pocket/internal/importer"
	"github.com/MrJamesThe3rd/pocket/internal/ledger"
	ledgermemory "github.com/MrJamesThe3rd/pocket/internal/ledger/memory"
	ledgerstore "github.com/MrJamesThe3rd/pocket/internal/ledger/store"
	"github.com/MrJamesThe3rd/pocket/internal/matching"
	matchingmemory "github.com/MrJamesThe3rd/pocket/internal/matching/memory"
	matchingstore "github.com/MrJamesThe3rd/pocket/internal/matching/store"
)

type App struct {
	Ledger   *ledger.Service
	Matching *matching.Service
	Import   *importer.Service
	Export   *export.Service

	db *sql.DB
}

// New migrates and opens the configured database, or seeds an in-memory
// ledger in demo mode. notifier may be nil.
func New(cfg *config.Config, notifier ledger.Notifier) (*App, error) {
	var (
		ledgerRepo   ledger.Repository
		matchingRepo matching.Repository
		db           *sql.DB
	)

	if cfg.DemoMode() {
		slog.Warn("running in demo mode, nothing will be persisted")

		ledgerRepo = ledgermemory.New()
		matchingRepo = matchingmemory.New()
	} else {
		dialect, dsn, err := cfg.Database()
		if err != nil {
			return nil, err
		}

		if err := database.Migrate(dialect, dsn); err != nil {
			return nil, fmt.Errorf("migrating database: %w", err)
		}

		db, err = database.Open(dialect, dsn)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}

		ledgerRepo = ledgerstore.New(db, dialect)
		matchingRepo = matchingstore.New(db, dialect)
	}

	matchingSvc := matching.NewService(matchingRepo, ledgerRepo)

	opts := []ledger.Option{ledger.WithSuggester(matchingSvc)}
	if notifier != nil {
		opts = append(opts, ledger.WithNotifier(notifier))
	}

	ledgerSvc := ledger.NewService(ledgerRepo, opts...)

	return &App{
		Ledger:   ledgerSvc,
		Matching: matchingSvc,
		Import:   importer.NewService(ledgerSvc),
		Export:   export.NewService(ledgerSvc),
		db:       db,
	}, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}

	return a.db.Close()
}
