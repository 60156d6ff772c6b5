package domain

import (
	"fmt"
	"time"
)

// Date is a calendar date in ISO form ("2006-01-02"). The ISO form
// compares correctly as a plain string, which is how date ranges are
// expressed both here and in SQL.
type Date string

const dateLayout = "2006-01-02"

// ParseDate parses an ISO calendar date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", ErrValidation("invalid date %q: use YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(dateLayout))
}

// Today returns the current calendar date in the given location.
func Today(loc *time.Location) Date {
	return DateOf(time.Now().In(loc))
}

// Time returns midnight of the date in the given location.
func (d Date) Time(loc *time.Location) time.Time {
	t, err := time.ParseInLocation(dateLayout, string(d), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time(time.UTC).AddDate(0, 0, n))
}

// Weekday returns the day of week of d.
func (d Date) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool { return d < other }

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool { return d > other }

func (d Date) String() string { return string(d) }

// DateRange is an inclusive [From, To] span of calendar dates.
type DateRange struct {
	From Date
	To   Date
}

// Validate checks that both bounds are set and ordered.
func (r DateRange) Validate() error {
	if r.From == "" || r.To == "" {
		return ErrValidation("both from and to dates are required")
	}
	if r.From.After(r.To) {
		return ErrValidation("from date %s is after to date %s", r.From, r.To)
	}
	return nil
}

// Days enumerates every date in the range in ascending order.
func (r DateRange) Days() []Date {
	var days []Date
	for d := r.From; !d.After(r.To); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Contains reports whether d falls inside the range.
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s..%s", r.From, r.To)
}
