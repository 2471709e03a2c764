package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/roastery/internal/testutil"
	"github.com/leapstack-labs/roastery/pkg/adapter"
	"github.com/leapstack-labs/roastery/pkg/core"
	"github.com/leapstack-labs/roastery/pkg/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	tests := []struct {
		descriptor string
		expected   string
	}{
		{"sqlite:///coffee.db", "coffee.db"},
		{"sqlite:////var/lib/coffee.db", "/var/lib/coffee.db"},
		{"sqlite://", MemoryPath},
		{"sqlite:///:memory:", MemoryPath},
		{"sqlite:///data/coffee.db?mode=ro", "data/coffee.db"},
	}

	for _, tt := range tests {
		t.Run(tt.descriptor, func(t *testing.T) {
			assert.Equal(t, tt.expected, Path(tt.descriptor))
		})
	}
}

func TestSelfRegistration(t *testing.T) {
	assert.True(t, adapter.IsRegistered(core.DialectSQLite))
}

func TestConnect_InMemory(t *testing.T) {
	ctx := context.Background()
	a, err := adapter.Open(ctx, "sqlite://", testutil.NewTestLogger(t))
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	_, err = a.Conn().ExecContext(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY)")
	require.NoError(t, err)
	_, err = a.Conn().ExecContext(ctx, "INSERT INTO t (id) VALUES (?)", 1)
	require.NoError(t, err)

	var n int
	require.NoError(t, a.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM t").Scan(&n))
	assert.Equal(t, 1, n)
	assert.Equal(t, core.DialectSQLite, a.Dialect().Kind)
	assert.Same(t, dialect.SQLite, a.Dialect())
}

func TestConnect_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "coffee.db")

	a := New(nil, nil)
	require.NoError(t, a.Connect(ctx, "sqlite:///"+path))
	_, err := a.Conn().ExecContext(ctx, "CREATE TABLE t (id INTEGER)")
	require.NoError(t, err)
	require.NoError(t, a.Close())

	// Data survives reopening.
	b := New(nil, nil)
	require.NoError(t, b.Connect(ctx, "sqlite:///"+path))
	defer func() { _ = b.Close() }()
	var name string
	require.NoError(t, b.Conn().QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table'").Scan(&name))
	assert.Equal(t, "t", name)
}
