package dialect

import (
	"sync"

	"github.com/leapstack-labs/roastery/pkg/core"
)

// Dialect registry
var (
	dialectsMu sync.RWMutex
	dialects   = make(map[core.DialectKind]*core.DialectConfig)
)

// Get returns the configuration of a dialect.
func Get(kind core.DialectKind) (*core.DialectConfig, bool) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[kind]
	return d, ok
}

// Register registers a dialect configuration.
// A later registration for the same kind replaces the earlier one.
func Register(cfg *core.DialectConfig) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[cfg.Kind] = cfg
}

// For parses the descriptor and returns its dialect configuration.
func For(descriptor string) (*core.DialectConfig, error) {
	kind, err := Parse(descriptor)
	if err != nil {
		return nil, err
	}
	cfg, ok := Get(kind)
	if !ok {
		return nil, &UnsupportedError{Scheme: Scheme(descriptor), Supported: Schemes()}
	}
	return cfg, nil
}
