package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var johannesburg = time.FixedZone("SAST", 2*60*60)

func TestSelectDate_RejectsPastDays(t *testing.T) {
	now := time.Date(2026, 10, 18, 15, 45, 0, 0, johannesburg)

	tests := []struct {
		name      string
		candidate time.Time
		want      string
		ok        bool
	}{
		{"yesterday", time.Date(2026, 10, 17, 23, 59, 0, 0, johannesburg), "", false},
		{"today earlier than now", time.Date(2026, 10, 18, 0, 0, 0, 0, johannesburg), "2026-10-18", true},
		{"tomorrow", time.Date(2026, 10, 19, 0, 0, 0, 0, johannesburg), "2026-10-19", true},
		{"last year", time.Date(2025, 12, 31, 12, 0, 0, 0, johannesburg), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectDate(tt.candidate, now)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDate_UsesLocalCalendarFields(t *testing.T) {
	// Local midnight is 22:00 UTC the previous day; the date must not shift.
	local := time.Date(2026, 11, 1, 0, 0, 0, 0, johannesburg)
	assert.Equal(t, "2026-11-01", FormatDate(local))
	assert.Equal(t, "2026-10-31", FormatDate(local.UTC()))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-11-01", johannesburg)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, johannesburg), d)

	_, err = ParseDate("01/11/2026", johannesburg)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestMonthNavigation(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, johannesburg)
	oct := MonthOf(now)

	assert.Equal(t, Month{2026, time.November}, oct.Next())
	assert.Equal(t, Month{2027, time.January}, Month{2026, time.December}.Next())
	assert.Equal(t, oct, oct.Prev(now), "cannot navigate before the current month")
	assert.Equal(t, oct, Month{2026, time.November}.Prev(now))

	m, err := ParseMonth("2027-02")
	require.NoError(t, err)
	assert.Equal(t, "2027-02", m.String())
	_, err = ParseMonth("2027-13")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestMonthView(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 0, 0, 0, johannesburg)
	grid := MonthOf(now).View(now)

	assert.Equal(t, "2026-10", grid.Month)
	assert.Equal(t, "October 2026", grid.Title)
	assert.False(t, grid.CanGoBack)
	assert.Equal(t, "2026-11", grid.Next)

	// 1 October 2026 is a Thursday: four leading blanks.
	for i := 0; i < 4; i++ {
		assert.True(t, grid.Days[i].Blank)
	}
	days := grid.Days[4:]
	require.Len(t, days, 31)
	assert.Equal(t, "2026-10-01", days[0].Date)
	assert.True(t, days[16].Disabled, "17th is past")
	assert.False(t, days[17].Disabled, "today is selectable")
	assert.True(t, days[17].Today)
	assert.False(t, days[30].Disabled)

	next := MonthOf(now).Next().View(now)
	assert.True(t, next.CanGoBack)
	for _, d := range next.Days {
		if !d.Blank {
			assert.False(t, d.Disabled, d.Date)
		}
	}
}
