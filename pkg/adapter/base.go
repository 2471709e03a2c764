package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/roastery/pkg/core"
)

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Conn and Dialect implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    *core.DialectConfig
	Logger *slog.Logger
}

// NewBase wraps an already open connection pool.
func NewBase(db *sql.DB, cfg *core.DialectConfig, logger *slog.Logger) *BaseSQLAdapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BaseSQLAdapter{DB: db, Cfg: cfg, Logger: logger}
}

// Connect is not supported on a bare base adapter; use NewBase or a concrete adapter.
func (b *BaseSQLAdapter) Connect(_ context.Context, _ string) error {
	return fmt.Errorf("base adapter cannot open connections")
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		err := b.DB.Close()
		b.DB = nil
		return err
	}
	return nil
}

// Conn returns the connection pool, or nil before Connect.
func (b *BaseSQLAdapter) Conn() *sql.DB {
	return b.DB
}

// Dialect returns the dialect configuration.
func (b *BaseSQLAdapter) Dialect() *core.DialectConfig {
	return b.Cfg
}

// Attach pings an open pool and takes ownership of it.
// Concrete adapters call this from Connect once the pool is configured.
func (b *BaseSQLAdapter) Attach(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping %s: %w", b.Cfg.Kind, err)
	}
	b.DB = db
	return nil
}
