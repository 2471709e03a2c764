package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/leapstack-labs/roastery/pkg/adapter"
	"github.com/leapstack-labs/roastery/pkg/core"
	"github.com/leapstack-labs/roastery/pkg/dialect"
)

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
// A nil cfg uses dialect.Postgres; a nil logger uses a discard logger.
func New(cfg *core.DialectConfig, logger *slog.Logger) *Adapter {
	if cfg == nil {
		cfg = dialect.Postgres
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Cfg: cfg, Logger: logger},
	}
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, descriptor string) error {
	cfg, err := ParseConfig(descriptor)
	if err != nil {
		return err
	}

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	return a.Attach(ctx, stdlib.OpenDB(*cfg))
}

// ParseConfig converts a descriptor into a pgx connection config.
// Driver suffixes ("postgresql+psycopg2://") are dropped; pgx handles the rest,
// including sslmode and PG* environment defaults.
func ParseConfig(descriptor string) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(buildURL(descriptor))
	if err != nil {
		return nil, fmt.Errorf("invalid postgres descriptor: %w", err)
	}
	return cfg, nil
}

func buildURL(descriptor string) string {
	return "postgres://" + strings.TrimPrefix(dialect.Rest(descriptor), "//")
}
