package period

import (
	"time"
)

// Bucket key layouts.
const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// Days lists every business-day key of r in order, both ends included.
// Reports seed their series from this so that empty days render as zero.
func Days(r Range, loc *time.Location) []string {
	start := r.Start.In(loc)
	end := r.End.In(loc)
	cur := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)

	var keys []string
	for !cur.After(end) {
		keys = append(keys, cur.Format(DayLayout))
		cur = cur.AddDate(0, 0, 1)
	}
	return keys
}

// Months lists every month key of r in order, both ends included.
func Months(r Range, loc *time.Location) []string {
	start := r.Start.In(loc)
	end := r.End.In(loc)
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, loc)

	var keys []string
	for !cur.After(end) {
		keys = append(keys, cur.Format(MonthLayout))
		cur = cur.AddDate(0, 1, 0)
	}
	return keys
}

// MonthLabel renders a month key as "Jan 2024". Invalid keys are returned as-is.
func MonthLabel(key string) string {
	t, err := time.Parse(MonthLayout, key)
	if err != nil {
		return key
	}
	return t.Format("Jan 2006")
}

// TrailingMonths returns the n month ranges ending with the month containing t,
// oldest first.
func TrailingMonths(t time.Time, n int, loc *time.Location) []Range {
	out := make([]Range, 0, n)
	cur := RangeAt(Monthly, t, loc)
	for i := 0; i < n; i++ {
		out = append([]Range{cur}, out...)
		cur = Previous(Monthly, cur, loc)
	}
	return out
}
