package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/leapstack-labs/roastery/pkg/core"
	"github.com/leapstack-labs/roastery/pkg/dialect"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[core.DialectKind]Factory)
)

// Factory builds an unconnected adapter for a registered dialect configuration.
type Factory func(cfg *core.DialectConfig, logger *slog.Logger) Adapter

// Register adds an adapter factory to the registry.
// Called by adapter implementations in their init() functions.
func Register(kind core.DialectKind, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = factory
}

// Get retrieves an adapter factory by dialect.
func Get(kind core.DialectKind) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[kind]
	return f, ok
}

// NewAdapter creates an unconnected adapter for the descriptor's dialect.
// The adapter receives the dialect configuration from the dialect registry.
// The logger parameter is passed to the adapter constructor (nil uses discard logger).
func NewAdapter(descriptor string, logger *slog.Logger) (Adapter, error) {
	cfg, err := dialect.For(descriptor)
	if err != nil {
		return nil, err
	}

	factory, ok := Get(cfg.Kind)
	if !ok {
		return nil, &UnknownAdapterError{
			Kind:      cfg.Kind,
			Available: ListAdapters(),
		}
	}
	return factory(cfg, logger), nil
}

// Open creates an adapter for the descriptor and connects it.
func Open(ctx context.Context, descriptor string, logger *slog.Logger) (Adapter, error) {
	a, err := NewAdapter(descriptor, logger)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, descriptor); err != nil {
		return nil, err
	}
	return a, nil
}

// ListAdapters returns all registered adapter names (sorted).
func ListAdapters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for kind := range registry {
		names = append(names, kind.String())
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if an adapter is registered for the dialect.
func IsRegistered(kind core.DialectKind) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[kind]
	return ok
}

// UnknownAdapterError is returned when a dialect is recognized but no adapter
// package was linked into the binary.
type UnknownAdapterError struct {
	Kind      core.DialectKind
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("no adapter registered for %s\nAvailable adapters: %v\nHint: import the adapter package for this dialect", e.Kind, e.Available)
}

// Unwrap lets callers match dialect.ErrNoEngine.
func (e *UnknownAdapterError) Unwrap() error {
	return dialect.ErrNoEngine
}
