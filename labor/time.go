package labor

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - Day-granularity calendar date (UTC)
// =============================================================================

type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date { return DateOf(time.Now()) }

func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(o Date) bool        { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool         { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool         { return d.Time.Equal(o.Time) }
func (d Date) BeforeOrEqual(o Date) bool { return !d.After(o) }
func (d Date) AfterOrEqual(o Date) bool  { return !d.Before(o) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return DateOf(d.Time.AddDate(0, 0, n)) }
func (d Date) AddMonths(n int) Date { return DateOf(d.Time.AddDate(0, n, 0)) }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

// IsWeekend is computed from the weekday alone. Holiday status comes from
// the calendar store; the two are independent, non-exclusive conditions.
func (d Date) IsWeekend() bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// ISOWeekday returns 1..7 for Monday..Sunday, the numbering contracts use
// for their weekly work-day patterns.
func (d Date) ISOWeekday() int {
	wd := int(d.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// =============================================================================
// MONTH HELPERS
// =============================================================================

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func FirstOfMonth(year int, month time.Month) Date {
	return NewDate(year, month, 1)
}

func LastOfMonth(year int, month time.Month) Date {
	return NewDate(year, month, DaysInMonth(year, month))
}

// ClampDayToMonth returns the given day-of-month, pulled back to the last
// day of the month when the month is shorter (payment day 31 in February).
func ClampDayToMonth(year int, month time.Month, day int) Date {
	if max := DaysInMonth(year, month); day > max {
		day = max
	}
	return NewDate(year, month, day)
}

// =============================================================================
// TIME OF DAY - Minutes since midnight
// =============================================================================

const MinutesPerDay = 24 * 60

// TimeOfDay is a clock time within a day, stored as minutes since
// midnight (0..1439).
type TimeOfDay struct {
	Minutes int
}

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay{Minutes: hour*60 + minute}
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return NewTimeOfDay(t.Hour(), t.Minute()), nil
}

func (t TimeOfDay) Hour() int               { return t.Minutes / 60 }
func (t TimeOfDay) Minute() int             { return t.Minutes % 60 }
func (t TimeOfDay) Before(o TimeOfDay) bool { return t.Minutes < o.Minutes }
func (t TimeOfDay) After(o TimeOfDay) bool  { return t.Minutes > o.Minutes }
func (t TimeOfDay) Equal(o TimeOfDay) bool  { return t.Minutes == o.Minutes }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// DurationMinutes returns the worked span from start to end. An end at or
// before the start wraps into the next day (a shift crossing midnight).
func DurationMinutes(start, end TimeOfDay) int {
	if end.After(start) {
		return end.Minutes - start.Minutes
	}
	return MinutesPerDay - start.Minutes + end.Minutes
}

// HoursFromMinutes converts worked minutes to decimal hours. Division by
// 60 in decimal space keeps accumulation drift-free (30 min = 0.5 exactly).
func HoursFromMinutes(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
}
