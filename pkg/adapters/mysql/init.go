// Package mysql provides the MySQL adapter.
//
// This file registers the MySQL adapter with the adapter registry.
// Import this package with a blank identifier to register the adapter:
//
//	import _ "github.com/leapstack-labs/roastery/pkg/adapters/mysql"
package mysql

import (
	"log/slog"

	"github.com/leapstack-labs/roastery/pkg/adapter"
	"github.com/leapstack-labs/roastery/pkg/core"
)

func init() {
	adapter.Register(core.DialectMySQL, func(cfg *core.DialectConfig, logger *slog.Logger) adapter.Adapter { return New(cfg, logger) })
}
