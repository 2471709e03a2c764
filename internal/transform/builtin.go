package transform

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	"github.com/shopspring/decimal"
)

// Built-in transform names.
const (
	DateMDY     = "date_mdy"
	DateISO     = "date_iso"
	TimeHMS     = "time_hms"
	Currency    = "currency"
	Percent     = "percent"
	NullableInt = "nullable_int"
	CustomerID  = "customer_id"
	Int         = "int"
)

// Month and day accept one or two digits; exports are not zero-padded consistently.
const (
	layoutMDY = "1/2/2006"
	layoutISO = "2006-1-2"
	layoutHMS = "15:04:05"
)

var layoutNames = map[string]string{
	layoutMDY: "MM/DD/YYYY",
	layoutISO: "YYYY-MM-DD",
}

var builtins = map[string]Func{
	DateMDY:     ParseDateMDY,
	DateISO:     ParseDateISO,
	TimeHMS:     ParseTimeHMS,
	Currency:    ParseCurrency,
	Percent:     StripPercent,
	NullableInt: ParseNullableInt,
	CustomerID:  ParseCustomerID,
	Int:         ParseInt,
}

// ParseDateMDY parses MM/DD/YYYY into a civil.Date.
func ParseDateMDY(raw string) (any, error) {
	return parseDate(raw, layoutMDY)
}

// ParseDateISO parses YYYY-MM-DD into a civil.Date.
func ParseDateISO(raw string) (any, error) {
	return parseDate(raw, layoutISO)
}

func parseDate(raw, layout string) (any, error) {
	t, err := time.Parse(layout, raw)
	if err != nil {
		return nil, invalid(raw, "a date in "+layoutNames[layout]+" format", nil)
	}
	return civil.DateOf(t), nil
}

// ParseTimeHMS parses a 24-hour HH:MM:SS time of day into a civil.Time.
func ParseTimeHMS(raw string) (any, error) {
	t, err := time.Parse(layoutHMS, raw)
	if err != nil {
		return nil, invalid(raw, "a time in HH:MM:SS format", nil)
	}
	return civil.TimeOf(t), nil
}

// ParseCurrency strips a single leading "$" and parses the rest as a decimal.
func ParseCurrency(raw string) (any, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(raw, "$"))
	if err != nil {
		return nil, invalid(raw, "a currency amount", err)
	}
	return d, nil
}

// StripPercent strips a single trailing "%" and keeps the remainder as-is.
func StripPercent(raw string) (any, error) {
	return strings.TrimSuffix(raw, "%"), nil
}

// ParseInt parses a base-10 integer.
func ParseInt(raw string) (any, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, invalid(raw, "an integer", nil)
	}
	return n, nil
}

// ParseNullableInt maps "" to NULL and parses anything else as an integer.
func ParseNullableInt(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	return ParseInt(raw)
}

// ParseCustomerID is ParseNullableInt where 0 also maps to NULL;
// 0 is the anonymous customer in receipt exports.
func ParseCustomerID(raw string) (any, error) {
	v, err := ParseNullableInt(raw)
	if err != nil || v == nil {
		return v, err
	}
	if v.(int64) == 0 {
		return nil, nil
	}
	return v, nil
}
