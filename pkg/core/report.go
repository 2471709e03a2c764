package core

// Birthday is one row of the birthdays report.
type Birthday struct {
	CustomerID        int64  `json:"customer_id"`
	CustomerFirstName string `json:"customer_first_name"`
}

// TopSellingProduct is one row of the top-selling products report.
type TopSellingProduct struct {
	ProductName string `json:"product_name"`
	TotalSales  int64  `json:"total_sales"`
}

// LastOrder is one row of the last-order-per-customer report.
// LastOrderDate is always formatted as YYYY-MM-DD.
type LastOrder struct {
	CustomerID    int64  `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	LastOrderDate string `json:"last_order_date"`
}

// TopSellingLimit caps the number of rows in the top-selling products report.
const TopSellingLimit = 10
