// Package store writes loader rows into the relational store.
//
// Every row is inserted in its own transaction: a row that fails to insert
// or commit is rolled back on its own and never affects rows before or after it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/roastery/pkg/adapter"
	"github.com/leapstack-labs/roastery/pkg/core"
)

var (
	// ErrUnknownEntity is returned for an entity tag the schema does not define.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrUnknownField is returned for a field that is not a column of the target table.
	ErrUnknownField = errors.New("unknown field")
	// ErrEmptyRow is returned when a row carries no fields at all.
	ErrEmptyRow = errors.New("row has no fields")
)

// RowResult is the outcome of a single row insert.
type RowResult struct {
	Committed bool
	Err       error
}

// Store is a handle to the relational store.
type Store struct {
	db     adapter.Adapter
	schema *core.Schema
	logger *slog.Logger
}

// Open connects to the store named by the descriptor.
// A nil schema means the coffee-shop schema.
func Open(ctx context.Context, descriptor string, schema *core.Schema, logger *slog.Logger) (*Store, error) {
	a, err := adapter.Open(ctx, descriptor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return New(a, schema, logger), nil
}

// New wraps a connected adapter.
func New(a adapter.Adapter, schema *core.Schema, logger *slog.Logger) *Store {
	if schema == nil {
		schema = core.CoffeeSchema()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{db: a, schema: schema, logger: logger}
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Schema returns the schema contract the store writes to.
func (s *Store) Schema() *core.Schema {
	return s.schema
}

// Dialect returns the store's dialect configuration.
func (s *Store) Dialect() *core.DialectConfig {
	return s.db.Dialect()
}

// DB returns the connection pool.
func (s *Store) DB() *sql.DB {
	return s.db.Conn()
}

// InsertRow inserts one row into the entity's table and commits it.
// On any failure the transaction is rolled back and the error returned in the result.
func (s *Store) InsertRow(ctx context.Context, entity core.Entity, fields map[string]any) RowResult {
	query, args, err := s.buildInsert(entity, fields)
	if err != nil {
		return RowResult{Err: err}
	}

	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return RowResult{Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return RowResult{Err: rollback(tx, fmt.Errorf("failed to insert into %s: %w", entity, err))}
	}
	if err := tx.Commit(); err != nil {
		return RowResult{Err: rollback(tx, fmt.Errorf("failed to commit: %w", err))}
	}
	return RowResult{Committed: true}
}

func rollback(tx *sql.Tx, cause error) error {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return errors.Join(cause, fmt.Errorf("rollback failed: %w", err))
	}
	return cause
}

// buildInsert renders the INSERT for the fields present in the row, in table column order.
func (s *Store) buildInsert(entity core.Entity, fields map[string]any) (string, []any, error) {
	table, ok := s.schema.Table(entity)
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	if len(fields) == 0 {
		return "", nil, ErrEmptyRow
	}

	for name := range fields {
		if _, ok := table.Column(name); !ok {
			return "", nil, fmt.Errorf("%w: %q is not a column of %s", ErrUnknownField, name, table.Name)
		}
	}

	d := s.db.Dialect()
	cols := make([]string, 0, len(fields))
	marks := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, col := range table.Columns {
		raw, ok := fields[col.Name]
		if !ok {
			continue
		}
		v, err := toDriverValue(col, raw)
		if err != nil {
			return "", nil, err
		}
		cols = append(cols, d.QuoteIdent(col.Name))
		args = append(args, v)
		marks = append(marks, d.FormatPlaceholder(len(args)))
	}

	//nolint:gosec // identifiers come from the schema contract and are quoted
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(table.Name), strings.Join(cols, ", "), strings.Join(marks, ", "))
	return query, args, nil
}
