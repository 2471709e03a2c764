package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-sql/civil"
	"github.com/leapstack-labs/roastery/pkg/adapter"
	"github.com/leapstack-labs/roastery/pkg/core"
)

// Reader is the entry point for the reports. It holds exactly one engine,
// chosen when the Reader is built, for its whole lifetime.
type Reader struct {
	engine Engine
	conn   adapter.Adapter
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Reader.
type Option func(*Reader)

// WithClock replaces the clock used for the default birthday date.
func WithClock(now func() time.Time) Option {
	return func(r *Reader) { r.now = now }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReader wraps an engine.
func NewReader(engine Engine, opts ...Option) *Reader {
	r := &Reader{
		engine: engine,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open connects to the store named by the descriptor and selects its engine.
// An unsupported descriptor fails here, before any query runs.
func Open(ctx context.Context, descriptor string, opts ...Option) (*Reader, error) {
	r := NewReader(nil, opts...)

	conn, err := adapter.Open(ctx, descriptor, r.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	engine, err := NewEngine(conn.Dialect().Kind, conn.Conn(), r.logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	r.engine = engine
	r.conn = conn
	r.logger.Debug("report engine selected", "dialect", engine.Kind().String())
	return r, nil
}

// Close releases the connection if the Reader opened it.
func (r *Reader) Close() error {
	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn = nil
	return err
}

// Kind returns the dialect of the engine in use.
func (r *Reader) Kind() core.DialectKind {
	return r.engine.Kind()
}

// Today returns the current local calendar date.
func (r *Reader) Today() civil.Date {
	return civil.DateOf(r.now())
}

// Birthdays returns the customers with a birthday on day, or today when day is nil.
func (r *Reader) Birthdays(ctx context.Context, day *civil.Date) ([]core.Birthday, error) {
	d := r.Today()
	if day != nil {
		d = *day
	}
	out, err := r.engine.Birthdays(ctx, d)
	if err != nil {
		r.logger.Error("birthdays report failed", "date", d.String(), "error", err)
		return nil, err
	}
	r.logger.Info("birthdays report", "date", d.String(), "count", len(out))
	return out, nil
}

// TopSellingProducts returns the best sellers of the year.
func (r *Reader) TopSellingProducts(ctx context.Context, year int) ([]core.TopSellingProduct, error) {
	out, err := r.engine.TopSellingProducts(ctx, year)
	if err != nil {
		r.logger.Error("top selling products report failed", "year", year, "error", err)
		return nil, err
	}
	r.logger.Info("top selling products report", "year", year, "count", len(out))
	return out, nil
}

// LastOrderPerCustomer returns every customer's latest order date.
func (r *Reader) LastOrderPerCustomer(ctx context.Context) ([]core.LastOrder, error) {
	out, err := r.engine.LastOrderPerCustomer(ctx)
	if err != nil {
		r.logger.Error("last order report failed", "error", err)
		return nil, err
	}
	r.logger.Info("last order report", "count", len(out))
	return out, nil
}
