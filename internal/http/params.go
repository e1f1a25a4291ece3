package http

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ParsePeriodParams extracts the reporting period from query parameters.
//
// Missing parameters default to the current date. A parse failure on either
// parameter resets BOTH month and year to the current date: the period is
// treated as one value, so "month=abc&year=2024" reports the current period,
// not (current month, 2024). Out-of-range integers pass through and simply
// match no data.
func ParsePeriodParams(query url.Values) (month, year int) {
	now := time.Now()
	month, year = int(now.Month()), now.Year()

	m, y := month, year
	ok := true
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			m = parsed
		} else {
			ok = false
		}
	}
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			y = parsed
		} else {
			ok = false
		}
	}
	if !ok {
		return month, year
	}
	return m, y
}

// sanitizeInput removes potentially dangerous characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	// Remove control characters except tab, newline, carriage return
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1 // remove character
		}
		return r
	}, s)
	return result
}
