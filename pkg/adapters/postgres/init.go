// Package postgres provides the PostgreSQL adapter.
//
// This file registers the PostgreSQL adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/roastery/pkg/adapters/postgres"
package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/roastery/pkg/adapter"
	"github.com/leapstack-labs/roastery/pkg/core"
)

func init() {
	adapter.Register(core.DialectPostgres, func(cfg *core.DialectConfig, logger *slog.Logger) adapter.Adapter { return New(cfg, logger) })
}
