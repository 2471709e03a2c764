package report

import (
	"fmt"
	"time"

	"github.com/golang-sql/civil"
)

// NormalizeDate renders a driver's DATE value as fixed-width YYYY-MM-DD.
// Drivers hand back time.Time, text, or raw bytes depending on dialect; text
// may carry a time part ("2019-04-29 00:00:00", "2019-04-29T00:00:00Z").
func NormalizeDate(v any) (string, error) {
	switch val := v.(type) {
	case time.Time:
		return civil.DateOf(val).String(), nil
	case civil.Date:
		return val.String(), nil
	case []byte:
		return normalizeDateText(string(val))
	case string:
		return normalizeDateText(val)
	case nil:
		return "", fmt.Errorf("missing date")
	default:
		return "", fmt.Errorf("unexpected date value %T", v)
	}
}

func normalizeDateText(s string) (string, error) {
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d.String(), nil
}
