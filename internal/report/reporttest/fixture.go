// Package reporttest provides a seeded coffee-shop store for report tests.
package reporttest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/leapstack-labs/roastery/internal/store"
	"github.com/leapstack-labs/roastery/internal/testutil"
	"github.com/leapstack-labs/roastery/pkg/core"

	_ "github.com/leapstack-labs/roastery/pkg/adapters/sqlite"
)

// Row is one fixture row.
type Row struct {
	Entity core.Entity
	Fields map[string]any
}

// Day is the date the birthday expectations are written for.
var Day = civil.Date{Year: 2023, Month: time.March, Day: 10}

// Birthdays is the expected birthdays report for Day.
var Birthdays = []core.Birthday{
	{CustomerID: 1, CustomerFirstName: "Kim"},
	{CustomerID: 3, CustomerFirstName: "Ana"},
}

// TopSelling2019 is the expected top sellers report for 2019.
var TopSelling2019 = []core.TopSellingProduct{
	{ProductName: "Product 01", TotalSales: 12},
	{ProductName: "Product 02", TotalSales: 11},
	{ProductName: "Product 03", TotalSales: 10},
	{ProductName: "Product 04", TotalSales: 10},
	{ProductName: "Product 05", TotalSales: 8},
	{ProductName: "Product 06", TotalSales: 7},
	{ProductName: "Product 07", TotalSales: 6},
	{ProductName: "Product 08", TotalSales: 5},
	{ProductName: "Product 09", TotalSales: 4},
	{ProductName: "Product 10", TotalSales: 3},
}

// TopSelling2018 is the expected top sellers report for 2018.
var TopSelling2018 = []core.TopSellingProduct{
	{ProductName: "Product 12", TotalSales: 100},
}

// LastOrders is the expected last order report.
var LastOrders = []core.LastOrder{
	{CustomerID: 1, CustomerEmail: "kim@example.com", LastOrderDate: "2019-04-02"},
	{CustomerID: 2, CustomerEmail: "lee@example.com", LastOrderDate: "2018-12-31"},
	{CustomerID: 3, CustomerEmail: "ana@example.com", LastOrderDate: "2019-04-01"},
}

func date(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

// Rows returns the fixture in load order.
func Rows() []Row {
	rows := []Row{
		{core.EntityDate, map[string]any{"transaction_date": date(2018, time.December, 31), "year_id": int64(2018)}},
		{core.EntityDate, map[string]any{"transaction_date": date(2019, time.April, 1), "year_id": int64(2019)}},
		{core.EntityDate, map[string]any{"transaction_date": date(2019, time.April, 2), "year_id": int64(2019)}},

		{core.EntityCustomer, map[string]any{"customer_id": int64(1), "name": "Kim", "email": "kim@example.com", "birthdate": date(1985, time.March, 10)}},
		{core.EntityCustomer, map[string]any{"customer_id": int64(2), "name": "Lee", "email": "lee@example.com", "birthdate": date(1990, time.October, 3)}},
		{core.EntityCustomer, map[string]any{"customer_id": int64(3), "name": "Ana", "email": "ana@example.com", "birthdate": date(2001, time.March, 10)}},
		{core.EntityCustomer, map[string]any{"customer_id": int64(4), "name": "Bo", "email": "bo@example.com", "birthdate": nil}},
		{core.EntityCustomer, map[string]any{"customer_id": int64(5), "name": "Cy", "email": "cy@example.com", "birthdate": date(1970, time.March, 11)}},
	}

	for i := 1; i <= 12; i++ {
		rows = append(rows, Row{core.EntityProduct, map[string]any{
			"product_id": int64(i),
			"product":    fmt.Sprintf("Product %02d", i),
		}})
	}

	txn := int64(0)
	receipt := func(day civil.Date, customer any, product, qty int64) Row {
		txn++
		return Row{core.EntityReceipt, map[string]any{
			"transaction_id":   txn,
			"transaction_date": day,
			"transaction_time": civil.Time{Hour: 8},
			"sales_outlet_id":  int64(3),
			"customer_id":      customer,
			"product_id":       product,
			"quantity":         qty,
		}}
	}

	apr1, apr2, dec31 := date(2019, time.April, 1), date(2019, time.April, 2), date(2018, time.December, 31)

	// 2019 totals: product i sells 13-i, except product 4 ties product 3 at 10.
	rows = append(rows,
		receipt(apr1, int64(1), 1, 5),
		receipt(apr2, int64(1), 1, 7),
		receipt(apr1, int64(3), 2, 11),
		receipt(apr1, nil, 3, 10),
		receipt(apr1, int64(99), 4, 10),
	)
	for p := int64(5); p <= 12; p++ {
		rows = append(rows, receipt(apr1, nil, p, 13-p))
	}
	rows = append(rows, receipt(dec31, int64(2), 12, 100))

	return rows
}

// Seed inserts the fixture through the store.
func Seed(t testing.TB, s *store.Store) {
	t.Helper()
	ctx := context.Background()
	for _, r := range Rows() {
		if res := s.InsertRow(ctx, r.Entity, r.Fields); res.Err != nil {
			t.Fatalf("seed %s %v: %v", r.Entity, r.Fields, res.Err)
		}
	}
}

// OpenSQLite returns a seeded in-memory store.
func OpenSQLite(t testing.TB) *store.Store {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(ctx, "sqlite://", nil, testutil.NewTestLogger(t))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.ApplySchema(ctx); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	Seed(t, s)
	return s
}
