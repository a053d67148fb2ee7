package period

import (
	"time"
)

// Bounds is the full set of windows a report needs for one request.
type Bounds struct {
	Period Period `json:"period"`

	// Sales is the current window as true instants in the business zone.
	Sales Range `json:"sales"`
	// Expenses is the window used to select expense rows.
	Expenses Range `json:"expenses"`

	PreviousSales    Range `json:"previousSales"`
	PreviousExpenses Range `json:"previousExpenses"`

	Label string `json:"label"`

	loc       *time.Location
	shiftDays int
}

// Location returns the business zone the bounds were computed in.
func (b Bounds) Location() *time.Location {
	if b.loc == nil {
		return time.UTC
	}
	return b.loc
}

// SalesDay returns the business-day key ("2006-01-02") of a sale instant.
func (b Bounds) SalesDay(t time.Time) string {
	return t.In(b.Location()).Format(DayLayout)
}

// ExpenseDay returns the business-day key of an expense instant.
// With a legacy shift the stored UTC date is moved forward to the business day
// it was recorded for.
func (b Bounds) ExpenseDay(t time.Time) string {
	if b.shiftDays == 0 {
		return b.SalesDay(t)
	}
	return t.UTC().AddDate(0, 0, b.shiftDays).Format(DayLayout)
}

// ExpenseMonth returns the business-month key ("2006-01") of an expense instant.
func (b Bounds) ExpenseMonth(t time.Time) string {
	if b.shiftDays == 0 {
		return t.In(b.Location()).Format(MonthLayout)
	}
	return t.UTC().AddDate(0, 0, b.shiftDays).Format(MonthLayout)
}

// SalesMonth returns the business-month key of a sale instant.
func (b Bounds) SalesMonth(t time.Time) string {
	return t.In(b.Location()).Format(MonthLayout)
}

// Resolver turns period tokens into Bounds. It is safe for concurrent use.
type Resolver struct {
	loc             *time.Location
	expenseDayShift int
	now             func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithExpenseDayShift sets how many days expense bounds are moved back.
// Zero means expenses use the same instants as sales.
func WithExpenseDayShift(days int) Option {
	return func(r *Resolver) {
		if days >= 0 {
			r.expenseDayShift = days
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// NewResolver creates a resolver for the given business zone.
// A nil location falls back to UTC.
func NewResolver(loc *time.Location, opts ...Option) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	r := &Resolver{
		loc:             loc,
		expenseDayShift: 1,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadLocation loads a zone by name, defaulting to DefaultLocation.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultLocation
	}
	return time.LoadLocation(name)
}

// Location returns the business zone.
func (r *Resolver) Location() *time.Location { return r.loc }

// Now returns the current instant in the business zone.
func (r *Resolver) Now() time.Time { return r.now().In(r.loc) }

// Resolve computes bounds for p relative to the current instant.
func (r *Resolver) Resolve(p Period) Bounds {
	return r.ResolveAt(p, r.now())
}

// ResolveAt computes bounds for p relative to now.
func (r *Resolver) ResolveAt(p Period, now time.Time) Bounds {
	if p == "" {
		p = Monthly
	}
	cur := RangeAt(p, now, r.loc)
	prev := Previous(p, cur, r.loc)

	return Bounds{
		Period:           p,
		Sales:            cur,
		Expenses:         r.ExpenseRange(cur),
		PreviousSales:    prev,
		PreviousExpenses: r.ExpenseRange(prev),
		Label:            Label(p, cur, r.loc),
		loc:              r.loc,
		shiftDays:        r.expenseDayShift,
	}
}

// Today returns the current business day as an inclusive range.
func (r *Resolver) Today() Range {
	return DayRange(r.now(), r.loc)
}

// ExpenseRange maps a sales window to the window expenses are selected with.
func (r *Resolver) ExpenseRange(sales Range) Range {
	if r.expenseDayShift == 0 {
		return sales
	}
	return ShiftToUTC(sales, r.loc, r.expenseDayShift)
}

// DayRange returns the calendar day containing t in loc.
func DayRange(t time.Time, loc *time.Location) Range {
	t = t.In(loc)
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return Range{Start: start, End: lastMilli(start.AddDate(0, 0, 1))}
}
