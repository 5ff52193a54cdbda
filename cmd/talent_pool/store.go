package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-pool/internal/config"
	"github.com/jonathan/talent-pool/internal/db"
	"github.com/jonathan/talent-pool/internal/recompute"
	"github.com/jonathan/talent-pool/internal/schemas"
	"github.com/jonathan/talent-pool/internal/scoring"
	"github.com/jonathan/talent-pool/internal/server"
	"github.com/jonathan/talent-pool/internal/sqlitedb"
	"github.com/jonathan/talent-pool/internal/types"
)

// store is everything the commands need from a backend. Both db.DB and
// sqlitedb.DB satisfy it.
type store interface {
	recompute.CandidateStore
	scoring.AssessmentLookup
	server.Store
	CreateUser(ctx context.Context, name, email, passwordHash string, role types.Role) (uuid.UUID, error)
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
}

var (
	_ store = (*db.DB)(nil)
	_ store = (*sqlitedb.DB)(nil)
)

// openStore connects to the configured backend. The returned func releases it.
func openStore(ctx context.Context, cfg *config.ServiceConfig) (store, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		database, err := sqlitedb.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return database, func() {
			if err := database.Close(); err != nil {
				slog.Warn("closing sqlite store", "error", err)
			}
		}, nil
	case config.StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, nil, fmt.Errorf("DATABASE_URL environment variable is required for the postgres store")
		}
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return database, database.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// newDriver wires the scorer, the breakdown validator and the recompute driver over st.
func newDriver(st store, cfg *config.ServiceConfig, logger *slog.Logger) (*recompute.Driver, *scoring.Scorer, error) {
	scorer := scoring.NewScorer(st)
	validator, err := schemas.NewBreakdownValidator(scorer.Version())
	if err != nil {
		return nil, nil, err
	}
	driver := recompute.NewDriver(st, scorer, validator, recompute.Config{
		DefaultLimit: cfg.Recompute.DefaultLimit,
		MaxLimit:     cfg.Recompute.MaxLimit,
		Concurrency:  cfg.Recompute.Concurrency,
		Timeout:      cfg.Recompute.Timeout,
	}, logger)
	return driver, scorer, nil
}

// commandContext bounds one-shot commands that have no batch deadline of their own.
func commandContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 5*time.Minute)
}
