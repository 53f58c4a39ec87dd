package labor_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/wage-engine/labor"
)

// =============================================================================
// DATE TESTS
// =============================================================================

func TestParseDate_Valid(t *testing.T) {
	d, err := labor.ParseDate("2025-01-06")
	require.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, time.January, d.Month())
	assert.Equal(t, 6, d.Day())
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := labor.ParseDate("06/01/2025")
	assert.Error(t, err)
}

func TestISOWeekday_MondayIsOne_SundayIsSeven(t *testing.T) {
	// 2025-01-06 is a Monday, 2025-01-12 a Sunday.
	monday := labor.NewDate(2025, time.January, 6)
	sunday := labor.NewDate(2025, time.January, 12)

	assert.Equal(t, 1, monday.ISOWeekday())
	assert.Equal(t, 7, sunday.ISOWeekday())
	assert.False(t, monday.IsWeekend())
	assert.True(t, sunday.IsWeekend())
}

func TestDaysInMonth_LeapAndNonLeap(t *testing.T) {
	assert.Equal(t, 29, labor.DaysInMonth(2024, time.February))
	assert.Equal(t, 28, labor.DaysInMonth(2025, time.February))
	assert.Equal(t, 31, labor.DaysInMonth(2025, time.January))
	assert.Equal(t, 30, labor.DaysInMonth(2025, time.April))
}

func TestClampDayToMonth_ShortMonth(t *testing.T) {
	// Day 31 in February clamps to the last real day.
	d := labor.ClampDayToMonth(2025, time.February, 31)
	assert.Equal(t, labor.NewDate(2025, time.February, 28), d)

	leap := labor.ClampDayToMonth(2024, time.February, 31)
	assert.Equal(t, labor.NewDate(2024, time.February, 29), leap)

	normal := labor.ClampDayToMonth(2025, time.March, 15)
	assert.Equal(t, labor.NewDate(2025, time.March, 15), normal)
}

func TestAddMonths_CrossesYearBoundary(t *testing.T) {
	d := labor.NewDate(2025, time.November, 15).AddMonths(2)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, time.January, d.Month())
}

// =============================================================================
// TIME-OF-DAY TESTS
// =============================================================================

func TestParseTimeOfDay(t *testing.T) {
	tod, err := labor.ParseTimeOfDay("22:30")
	require.NoError(t, err)
	assert.Equal(t, 22, tod.Hour())
	assert.Equal(t, 30, tod.Minute())
	assert.Equal(t, "22:30", tod.String())

	_, err = labor.ParseTimeOfDay("9 PM")
	assert.Error(t, err)
}

func TestDurationMinutes_SameDay(t *testing.T) {
	start := labor.NewTimeOfDay(9, 0)
	end := labor.NewTimeOfDay(18, 0)
	assert.Equal(t, 540, labor.DurationMinutes(start, end))
}

func TestDurationMinutes_WrapsPastMidnight(t *testing.T) {
	// End at or before start means the shift runs into the next day.
	start := labor.NewTimeOfDay(22, 0)
	end := labor.NewTimeOfDay(6, 0)
	assert.Equal(t, 480, labor.DurationMinutes(start, end))

	// Equal start/end wraps to a full day.
	noon := labor.NewTimeOfDay(12, 0)
	assert.Equal(t, labor.MinutesPerDay, labor.DurationMinutes(noon, noon))
}

func TestHoursFromMinutes_ExactDecimal(t *testing.T) {
	// 90 minutes is exactly 1.5 hours in decimal space.
	assert.True(t, labor.HoursFromMinutes(90).Equal(decimal.RequireFromString("1.5")))
	assert.True(t, labor.HoursFromMinutes(540).Equal(decimal.NewFromInt(9)))
}
