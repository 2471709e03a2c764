// Package postgres provides the PostgreSQL report engine.
//
// Import it with a blank identifier to register the engine:
//
//	import _ "github.com/leapstack-labs/roastery/internal/report/postgres"
package postgres

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/golang-sql/civil"
	"github.com/leapstack-labs/roastery/internal/report"
	"github.com/leapstack-labs/roastery/pkg/core"
)

const birthdaysSQL = `
SELECT customer_id, name
FROM customer
WHERE EXTRACT(MONTH FROM birthdate) = $1
    AND EXTRACT(DAY FROM birthdate) = $2
ORDER BY customer_id ASC`

var topSellingSQL = fmt.Sprintf(`
SELECT p.product, SUM(r.quantity) AS total_sales
FROM receipt r
JOIN product p ON p.product_id = r.product_id
JOIN "date" d ON d.transaction_date = r.transaction_date
WHERE d.year_id = $1
GROUP BY p.product_id, p.product
ORDER BY total_sales DESC, p.product_id ASC
LIMIT %d`, core.TopSellingLimit)

const lastOrderSQL = `
SELECT c.customer_id, c.email, t.last_order_date
FROM (
    SELECT customer_id, MAX(transaction_date) AS last_order_date
    FROM receipt
    WHERE customer_id IS NOT NULL
    GROUP BY customer_id
) t
JOIN customer c ON c.customer_id = t.customer_id
ORDER BY c.customer_id ASC`

// Queries is the PostgreSQL phrasing of the reports.
var Queries = report.Queries{
	Birthdays: birthdaysSQL,
	BirthdayArgs: func(day civil.Date) []any {
		return []any{int(day.Month), day.Day}
	},
	TopSelling: topSellingSQL,
	LastOrder:  lastOrderSQL,
}

// New creates the PostgreSQL engine.
func New(db *sql.DB, logger *slog.Logger) report.Engine {
	return &report.SQLEngine{DB: db, Dialect: core.DialectPostgres, Q: Queries, Logger: logger}
}

func init() {
	report.Register(core.DialectPostgres, New)
}
