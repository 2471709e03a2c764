package store

import (
	"context"
	"embed"
	"fmt"
	"path"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*/*.sql
var migrations embed.FS

// ApplySchema creates the schema contract's tables for the store's dialect.
// Applying it to a store that already has the tables is a no-op.
func (s *Store) ApplySchema(ctx context.Context) error {
	d := s.db.Dialect()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect(d.GooseDialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	dir := path.Join("migrations", d.Kind.String())
	if err := goose.UpContext(ctx, s.db.Conn(), dir); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, s.db.Conn())
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	s.logger.Info("schema applied", "dialect", d.Kind.String(), "version", version)
	return nil
}
