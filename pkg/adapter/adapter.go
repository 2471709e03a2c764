// Package adapter provides the database connection contract shared by the
// loader and the report engines.
//
// Concrete adapters live in pkg/adapters/ subdirectories. Each one imports its
// database/sql driver, turns a connection descriptor into a driver DSN, and
// registers itself in init().
package adapter

import (
	"context"
	"database/sql"

	"github.com/leapstack-labs/roastery/pkg/core"
)

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect opens and pings the database named by the descriptor.
	Connect(ctx context.Context, descriptor string) error

	// Close closes the database connection and releases resources.
	Close() error

	// Conn returns the underlying connection pool.
	Conn() *sql.DB

	// Dialect returns the SQL dialect configuration for this adapter.
	Dialect() *core.DialectConfig
}
