package report

import (
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/leapstack-labs/roastery/pkg/core"
	"github.com/leapstack-labs/roastery/pkg/dialect"
)

// Factory builds an engine over an open connection pool.
type Factory func(db *sql.DB, logger *slog.Logger) Engine

var (
	registryMu sync.RWMutex
	registry   = make(map[core.DialectKind]Factory)
)

// Register adds an engine factory for a dialect.
// Called by engine implementations in their init() functions.
func Register(kind core.DialectKind, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = factory
}

// Engines returns the dialects with a registered engine (sorted).
func Engines() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for kind := range registry {
		names = append(names, kind.String())
	}
	sort.Strings(names)
	return names
}

// NewEngine builds the engine for a dialect.
func NewEngine(kind core.DialectKind, db *sql.DB, logger *slog.Logger) (Engine, error) {
	registryMu.RLock()
	factory, ok := registry[kind]
	registryMu.RUnlock()
	if !ok {
		return nil, &UnknownEngineError{Kind: kind, Available: Engines()}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return factory(db, logger), nil
}

// UnknownEngineError is returned when no engine is registered for a dialect.
type UnknownEngineError struct {
	Kind      core.DialectKind
	Available []string
}

func (e *UnknownEngineError) Error() string {
	return fmt.Sprintf("no report engine for %s\nAvailable engines: %v", e.Kind, e.Available)
}

// Unwrap lets callers match dialect.ErrNoEngine.
func (e *UnknownEngineError) Unwrap() error {
	return dialect.ErrNoEngine
}
