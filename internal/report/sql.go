package report

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/golang-sql/civil"
	"github.com/leapstack-labs/roastery/pkg/core"
)

// Queries holds one dialect's phrasing of the reports.
type Queries struct {
	// Birthdays selects (customer_id, name) for the birthday arguments.
	Birthdays string
	// BirthdayArgs renders the query arguments for a day.
	BirthdayArgs func(day civil.Date) []any
	// TopSelling selects (product, total) for a year_id argument.
	TopSelling string
	// LastOrder selects (customer_id, email, last order date).
	LastOrder string
}

// SQLEngine runs a dialect's Queries over database/sql.
// Dialect subpackages embed it and supply their Queries.
type SQLEngine struct {
	DB      *sql.DB
	Dialect core.DialectKind
	Q       Queries
	Logger  *slog.Logger
}

// Kind returns the engine's dialect.
func (e *SQLEngine) Kind() core.DialectKind {
	return e.Dialect
}

// Birthdays implements Engine.
func (e *SQLEngine) Birthdays(ctx context.Context, day civil.Date) ([]core.Birthday, error) {
	rows, err := e.query(ctx, "birthdays", e.Q.Birthdays, e.Q.BirthdayArgs(day)...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []core.Birthday{}
	for rows.Next() {
		var id int64
		var name sql.NullString
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan birthday: %w", err)
		}
		out = append(out, core.Birthday{CustomerID: id, CustomerFirstName: name.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating birthdays: %w", err)
	}
	return out, nil
}

// TopSellingProducts implements Engine.
func (e *SQLEngine) TopSellingProducts(ctx context.Context, year int) ([]core.TopSellingProduct, error) {
	rows, err := e.query(ctx, "top selling products", e.Q.TopSelling, year)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []core.TopSellingProduct{}
	for rows.Next() {
		var name sql.NullString
		var total int64
		if err := rows.Scan(&name, &total); err != nil {
			return nil, fmt.Errorf("failed to scan product total: %w", err)
		}
		out = append(out, core.TopSellingProduct{ProductName: name.String, TotalSales: total})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product totals: %w", err)
	}
	return out, nil
}

// LastOrderPerCustomer implements Engine.
func (e *SQLEngine) LastOrderPerCustomer(ctx context.Context) ([]core.LastOrder, error) {
	rows, err := e.query(ctx, "last order per customer", e.Q.LastOrder)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := []core.LastOrder{}
	for rows.Next() {
		var id int64
		var email sql.NullString
		var last any
		if err := rows.Scan(&id, &email, &last); err != nil {
			return nil, fmt.Errorf("failed to scan last order: %w", err)
		}
		date, err := NormalizeDate(last)
		if err != nil {
			return nil, fmt.Errorf("customer %d: %w", id, err)
		}
		out = append(out, core.LastOrder{CustomerID: id, CustomerEmail: email.String, LastOrderDate: date})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating last orders: %w", err)
	}
	return out, nil
}

func (e *SQLEngine) query(ctx context.Context, name, q string, args ...any) (*sql.Rows, error) {
	if e.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	e.Logger.Debug("running report query", "report", name, "dialect", e.Dialect.String())
	//nolint:rowserrcheck // rows.Err() is checked by the caller after iteration
	rows, err := e.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", name, err)
	}
	return rows, nil
}
