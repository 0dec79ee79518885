// Package model defines the value types shared by the flowtrack ledger and its
// presentation layers.
package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date layout used everywhere a date is
// written or read.
const DateLayout = "2006-01-02"

// MonthLayout is the layout of budget month keys. Lexicographic order on
// these keys is chronological order.
const MonthLayout = "2006-01"

var (
	ErrInvalidDate  = errors.New("invalid date")
	ErrInvalidMonth = errors.New("invalid month")
)

// Date is a calendar date without a time of day. The zero value is "no date".
type Date struct {
	t time.Time
}

// NewDate returns the date for year, month and day. Out-of-range values are
// normalized the way time.Date normalizes them.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today returns the local calendar date.
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses an ISO "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseMonth validates a "YYYY-MM" month key and returns it unchanged.
func ParseMonth(s string) (string, error) {
	if _, err := time.Parse(MonthLayout, s); err != nil {
		return "", fmt.Errorf("%w %q", ErrInvalidMonth, s)
	}
	return s, nil
}

func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Time() time.Time       { return d.t }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// String returns the ISO form, or "" for the zero date.
func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MonthKey returns the "YYYY-MM" budget key the date falls in.
func (d Date) MonthKey() string {
	return d.t.Format(MonthLayout)
}

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// AddMonthClamped returns the same day one calendar month later. When the
// target month is shorter than the source day, the result is the last day of
// the target month: Jan 31 becomes Feb 29 in leap years and Feb 28 otherwise.
func (d Date) AddMonthClamped() Date {
	return d.AddMonthOnDay(d.Day())
}

// AddMonthOnDay returns the given day of the following month, clamped to
// that month's last day. Stepping a monthly series with a fixed anchor day
// keeps it from drifting: anchored on the 31st, Feb 29 steps to Mar 31.
func (d Date) AddMonthOnDay(day int) Date {
	y, m, _ := d.t.Date()
	m++
	if m > time.December {
		m = time.January
		y++
	}
	day = min(max(day, 1), DaysIn(y, m))
	return NewDate(y, m, day)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
