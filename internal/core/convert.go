package core

// convert.go provides conversions between raw extract cells and stored values.
//
// Extract dates are month/day/year with a four-digit year. Nothing else is
// accepted: a value that does not parse is treated as absent, and absent
// values are stored as NULL.

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateLayout is the only date layout accepted in an extract.
// Go's 1/2 layout elements also accept zero-padded months and days.
const DateLayout = "1/2/2006"

// keyDateLayout renders dates inside composite keys.
const keyDateLayout = "2006-01-02"

// ParseDate converts an extract date to pgtype.Date.
// Returns invalid if the value is empty or not in DateLayout.
func ParseDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{Valid: false}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: t, Valid: true}
}

// FormatDate renders a date as YYYY-MM-DD, or "" when invalid.
func FormatDate(d pgtype.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(keyDateLayout)
}

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// FromPgText returns the string held by t, or "" when NULL.
func FromPgText(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

// SameDate reports whether two dates hold the same calendar day or are both absent.
func SameDate(a, b pgtype.Date) bool {
	if a.Valid != b.Valid {
		return false
	}
	if !a.Valid {
		return true
	}
	return FormatDate(a) == FormatDate(b)
}

// cell returns the trimmed value at index i, or "" when the row is too short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
