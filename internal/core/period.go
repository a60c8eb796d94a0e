package core

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// MonthStart returns midnight UTC on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthEnd returns the last instant of t's month (last day, 23:59:59 UTC).
// A cycle stays current for the whole of its end date, so the rollover
// comparison end_date >= now holds until the month actually turns.
func MonthEnd(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNext.Add(-time.Second)
}

// CycleDescription renders the human-readable cycle label, e.g. "January, 2024".
func CycleDescription(t time.Time) string {
	return t.Month().String() + ", " + t.Format("2006")
}

// NormalizeSavingTypeKey is the identity rule for saving types: first letter
// upper-cased, the rest lowered. Lookup-or-create always goes through this
// function so "rainy day", "Rainy Day" and "RAINY DAY" name the same type.
func NormalizeSavingTypeKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
