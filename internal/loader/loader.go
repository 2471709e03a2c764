// Package loader imports the CSV members of a zip archive into the store.
//
// The engine walks the mapping rules in order. For each valid rule it opens the
// named member, maps every record through the rule's renames and transforms,
// and inserts it as its own committed row. Failures are isolated: a bad rule
// skips one member, a bad row skips one row.
package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/roastery/internal/archive"
	"github.com/leapstack-labs/roastery/internal/mapping"
	"github.com/leapstack-labs/roastery/internal/store"
	"github.com/leapstack-labs/roastery/internal/transform"
	"github.com/leapstack-labs/roastery/pkg/core"
)

// ErrArchive is wrapped by the fatal error returned when the archive cannot be opened.
var ErrArchive = errors.New("archive unavailable")

// RowInserter stores one mapped row. *store.Store implements it.
type RowInserter interface {
	InsertRow(ctx context.Context, entity core.Entity, fields map[string]any) store.RowResult
}

// Config holds engine configuration.
type Config struct {
	// Rows receives every mapped row.
	Rows RowInserter
	// Rules is the mapping table; nil uses the built-in coffee-shop table.
	Rules []*mapping.Rule
	// Transforms resolves transform names; nil uses the built-ins.
	Transforms *transform.Registry
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Engine runs bulk loads.
type Engine struct {
	rows       RowInserter
	rules      []*mapping.Rule
	transforms *transform.Registry
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a load engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Rows == nil {
		return nil, fmt.Errorf("loader: no row inserter configured")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	rules := cfg.Rules
	if rules == nil {
		rules = mapping.Default()
	}
	reg := cfg.Transforms
	if reg == nil {
		reg = transform.NewRegistry()
	}
	return &Engine{
		rows:       cfg.Rows,
		rules:      rules,
		transforms: reg,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Run loads the archive at path. Only an unopenable archive or a cancelled
// context is an error; everything else is logged and counted in the summary.
func (e *Engine) Run(ctx context.Context, path string) (*Summary, error) {
	sum := &Summary{
		RunID:     uuid.New().String(),
		Archive:   path,
		StartedAt: e.now(),
	}
	logger := e.logger.With("run_id", sum.RunID)
	logger.Info("reading archive", "path", path)

	a, err := archive.Open(path)
	if err != nil {
		logger.Error("cannot open archive", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrArchive, err)
	}
	defer func() { _ = a.Close() }()

	for _, rule := range e.rules {
		if err := ctx.Err(); err != nil {
			sum.Duration = e.now().Sub(sum.StartedAt)
			return sum, err
		}
		fs := e.loadRule(ctx, logger, a, rule)
		sum.Files = append(sum.Files, fs)
	}

	sum.Duration = e.now().Sub(sum.StartedAt)
	logger.Info("load finished",
		"files", len(sum.Files),
		"loaded", sum.Loaded(),
		"failed", sum.Failed(),
		"skipped", sum.Skipped(),
		"duration", sum.Duration)
	return sum, ctx.Err()
}

func (e *Engine) loadRule(ctx context.Context, logger *slog.Logger, a *archive.Archive, rule *mapping.Rule) FileSummary {
	fs := FileSummary{SourceFile: rule.SourceFile, Entity: rule.Entity}

	if !mapping.Validate(rule, e.transforms, logger) {
		fs.Skipped, fs.Reason = true, rule.Err.Error()
		return fs
	}

	r, err := a.OpenCSV(rule.SourceFile)
	if err != nil {
		logger.Error("skipping archive member", "file", rule.SourceFile, "entity", string(rule.Entity), "error", err)
		fs.Skipped, fs.Reason = true, err.Error()
		return fs
	}
	defer func() { _ = r.Close() }()

	logger.Info("reading member", "file", rule.SourceFile, "entity", string(rule.Entity), "columns", len(r.Header()))
	for {
		if ctx.Err() != nil {
			break
		}

		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				fs.Failed++
				logger.Error("row failed", "file", rule.SourceFile, "entity", string(rule.Entity), "row", perr.Line, "error", err)
				continue
			}
			logger.Error("member unreadable", "file", rule.SourceFile, "entity", string(rule.Entity), "error", err)
			fs.Reason = err.Error()
			break
		}

		fields, err := MapRecord(rec, rule)
		if err == nil {
			res := e.rows.InsertRow(ctx, rule.Entity, fields)
			err = res.Err
		}
		if err != nil {
			fs.Failed++
			logger.Error("row failed", "file", rule.SourceFile, "entity", string(rule.Entity), "row", rec.Line, "error", err)
			continue
		}
		fs.Loaded++
	}

	logger.Info("member loaded", "file", rule.SourceFile, "loaded", fs.Loaded, "failed", fs.Failed)
	return fs
}

// MapRecord turns a CSV record into target fields: empty header names are
// dropped, headers are renamed, and transforms run on the renamed field.
// The rule must be normalized.
func MapRecord(rec archive.Record, rule *mapping.Rule) (map[string]any, error) {
	fields := make(map[string]any, len(rec.Header))
	var firstErr error
	rec.Each(func(key, value string) {
		if key == "" || firstErr != nil {
			return
		}
		if dst, ok := rule.Renames[key]; ok {
			key = dst
		}
		var v any = value
		if fn, ok := rule.Transforms[key]; ok {
			out, err := fn(value)
			if err != nil {
				firstErr = fmt.Errorf("field %s: %w", key, err)
				return
			}
			v = out
		}
		fields[key] = v
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return fields, nil
}
