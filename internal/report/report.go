// Package report answers the coffee-shop reports against any supported store.
//
// Each dialect contributes an Engine from its own subpackage, registered in
// init(). The engines differ only in how they phrase date and string
// operations; their results are identical for identical data. Reader wraps
// the engine chosen for a connection descriptor.
package report

import (
	"context"

	"github.com/golang-sql/civil"
	"github.com/leapstack-labs/roastery/pkg/core"
)

// Engine runs the reports in one SQL dialect.
type Engine interface {
	// Kind returns the dialect the engine speaks.
	Kind() core.DialectKind

	// Birthdays returns customers whose birthdate falls on the month and day
	// of the given date, in any year, ordered by customer_id.
	Birthdays(ctx context.Context, day civil.Date) ([]core.Birthday, error)

	// TopSellingProducts returns at most core.TopSellingLimit products by
	// total quantity sold in the year, highest first, ties by product_id.
	TopSellingProducts(ctx context.Context, year int) ([]core.TopSellingProduct, error)

	// LastOrderPerCustomer returns each known customer's latest receipt date,
	// ordered by customer_id. Anonymous receipts are ignored.
	LastOrderPerCustomer(ctx context.Context) ([]core.LastOrder, error)
}
