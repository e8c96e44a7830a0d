package service

import (
	"strings"
	"time"
	"unicode/utf8"
)

// mask keeps the first rune of s and replaces every other rune with '*'.
func mask(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return ""
	}
	return string(first) + strings.Repeat("*", utf8.RuneCountInString(s)-1)
}

// addMonths moves t by whole calendar months, clamping the day to the last
// day of the target month (31 Mar - 1 month = 28/29 Feb).
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month(), t.Location()); d > last {
		d = last
	}
	hh, mm, ss := t.Clock()
	return time.Date(target.Year(), target.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
