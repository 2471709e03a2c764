package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-sql/civil"
	"github.com/leapstack-labs/roastery/pkg/core"
	"github.com/shopspring/decimal"
)

// toDriverValue converts a mapped field value into a value every driver accepts
// for the column. Dates and times are bound as ISO text so all three dialects
// store the same calendar value without time zone shifts.
func toDriverValue(col core.Column, v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nullable(col)
	case civil.Date:
		return val.String(), nil
	case civil.Time:
		return val.String(), nil
	case decimal.Decimal:
		return val.String(), nil
	case int:
		return int64(val), nil
	case string:
		return coerceString(col, val)
	default:
		return v, nil
	}
}

func nullable(col core.Column) (any, error) {
	if !col.Nullable {
		return nil, fmt.Errorf("column %s: NULL not allowed", col.Name)
	}
	return nil, nil
}

// coerceString converts raw CSV text for typed columns. Empty text in a
// non-text column is NULL.
func coerceString(col core.Column, s string) (any, error) {
	if col.Type == core.ColumnText {
		return s, nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nullable(col)
	}
	switch col.Type {
	case core.ColumnInteger:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("column %s: %q is not an integer", col.Name, s)
		}
		return n, nil
	case core.ColumnDecimal:
		d, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("column %s: %q is not a decimal", col.Name, s)
		}
		return d.String(), nil
	case core.ColumnDate:
		d, err := civil.ParseDate(s)
		if err != nil {
			return nil, fmt.Errorf("column %s: %q is not a YYYY-MM-DD date", col.Name, s)
		}
		return d.String(), nil
	case core.ColumnTime:
		t, err := civil.ParseTime(s)
		if err != nil {
			return nil, fmt.Errorf("column %s: %q is not a HH:MM:SS time", col.Name, s)
		}
		return t.String(), nil
	default:
		return s, nil
	}
}
