package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/roastery/pkg/adapter"
	"github.com/leapstack-labs/roastery/pkg/core"
	"github.com/leapstack-labs/roastery/pkg/dialect"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// MemoryPath is the path of a private in-memory database.
const MemoryPath = ":memory:"

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// A nil cfg uses dialect.SQLite; a nil logger uses a discard logger.
func New(cfg *core.DialectConfig, logger *slog.Logger) *Adapter {
	if cfg == nil {
		cfg = dialect.SQLite
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Cfg: cfg, Logger: logger},
	}
}

// Connect opens the database file named by the descriptor.
func (a *Adapter) Connect(ctx context.Context, descriptor string) error {
	path := Path(descriptor)
	a.Logger.Debug("connecting to sqlite", slog.String("path", path))

	db, err := sql.Open(a.Cfg.DriverName, buildDSN(path))
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)

	return a.Attach(ctx, db)
}

// Path extracts the database path from a descriptor.
// "sqlite:///coffee.db" is relative, "sqlite:////var/coffee.db" is absolute,
// and "sqlite://" is an in-memory database.
func Path(descriptor string) string {
	rest := dialect.Rest(descriptor)
	rest = strings.TrimPrefix(rest, "/")
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return MemoryPath
	}
	return rest
}

func buildDSN(path string) string {
	if path == MemoryPath {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
}
