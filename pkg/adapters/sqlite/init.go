// Package sqlite provides the embedded SQLite adapter.
//
// This file registers the SQLite adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/roastery/pkg/adapters/sqlite"
package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/roastery/pkg/adapter"
	"github.com/leapstack-labs/roastery/pkg/core"
)

func init() {
	adapter.Register(core.DialectSQLite, func(cfg *core.DialectConfig, logger *slog.Logger) adapter.Adapter { return New(cfg, logger) })
}
