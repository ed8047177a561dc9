package sie

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayout is the SIE wire format for dates: YYYYMMDD.
const dateLayout = "20060102"

// ParseDate parses an SIE date field.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYYMMDD", s)
	}
	return t, nil
}

// FormatDate renders a date in the SIE wire format.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseAmount parses an SIE amount field into a decimal. The specification
// mandates '.' as the decimal separator but files with ',' exist in the
// wild, so both are accepted.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}
