// Package period resolves coarse reporting periods (weekly, monthly, yearly)
// into concrete inclusive instant ranges in a business time zone.
package period

import (
	"fmt"
	"strings"
	"time"

	"clubledger/internal/core/apperror"
)

// Period is a coarse reporting window token.
type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// DefaultLocation is used when no business zone is configured.
const DefaultLocation = "America/Mexico_City"

// Parse validates a period token. Empty input yields Monthly.
func Parse(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return Monthly, nil
	case Weekly:
		return Weekly, nil
	case Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	}
	return "", apperror.NewInvalidInput("period", "expected weekly, monthly or yearly").
		WithDetail("value", s)
}

// Range is an inclusive [Start, End] instant pair.
// End is the last millisecond of the window (e.g. Sunday 23:59:59.999).
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// In returns the same instants expressed in loc.
func (r Range) In(loc *time.Location) Range {
	return Range{Start: r.Start.In(loc), End: r.End.In(loc)}
}

// lastMilli converts an exclusive upper bound into the inclusive one.
func lastMilli(exclusive time.Time) time.Time {
	return exclusive.Add(-time.Millisecond)
}

// RangeAt returns the window of period p containing t, computed in loc.
func RangeAt(p Period, t time.Time, loc *time.Location) Range {
	t = t.In(loc)
	y, m, d := t.Date()

	switch p {
	case Weekly:
		// ISO week: Monday is day 0.
		offset := (int(t.Weekday()) + 6) % 7
		start := time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
		return Range{Start: start, End: lastMilli(start.AddDate(0, 0, 7))}
	case Yearly:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return Range{Start: start, End: lastMilli(start.AddDate(1, 0, 0))}
	default:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return Range{Start: start, End: lastMilli(start.AddDate(0, 1, 0))}
	}
}

// Previous returns the window immediately before r for period p.
func Previous(p Period, r Range, loc *time.Location) Range {
	start := r.Start.In(loc)
	switch p {
	case Weekly:
		return RangeAt(p, start.AddDate(0, 0, -7), loc)
	case Yearly:
		return RangeAt(p, start.AddDate(-1, 0, 0), loc)
	default:
		return RangeAt(p, start.AddDate(0, -1, 0), loc)
	}
}

// ShiftToUTC re-reads the wall clock of r in UTC after moving it back by
// days calendar days. Expense dates were historically stored this way.
func ShiftToUTC(r Range, loc *time.Location, days int) Range {
	conv := func(t time.Time) time.Time {
		t = t.In(loc).AddDate(0, 0, -days)
		y, m, d := t.Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}
	return Range{Start: conv(r.Start), End: conv(r.End)}
}

// Label renders a human label for a window, e.g. "Week 20, 2024", "May 2024", "2024".
func Label(p Period, r Range, loc *time.Location) string {
	start := r.Start.In(loc)
	switch p {
	case Weekly:
		year, week := start.ISOWeek()
		return fmt.Sprintf("Week %d, %d", week, year)
	case Yearly:
		return start.Format("2006")
	default:
		return start.Format("January 2006")
	}
}
