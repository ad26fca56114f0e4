// Package availability implements date and time-range selection for a
// booking: a month calendar that refuses past days and a fixed half-hour time
// grid between 08:00 and 20:00.
package availability

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format of a selected date.
const DateLayout = "2006-01-02"

// MonthLayout is the wire format of a calendar month.
const MonthLayout = "2006-01"

var (
	ErrInvalidDate  = errors.New("availability: invalid date")
	ErrInvalidMonth = errors.New("availability: invalid month")
)

// FormatDate renders t as YYYY-MM-DD from its own calendar fields, so a
// local midnight never shifts to the previous day the way a UTC conversion can.
func FormatDate(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// ParseDate parses YYYY-MM-DD as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// StartOfDay zeroes the time of day of t in its location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsPast reports whether candidate falls on a calendar day before now's day.
// Today is never past, whatever the time of day.
func IsPast(candidate, now time.Time) bool {
	c := StartOfDay(candidate.In(now.Location()))
	return c.Before(StartOfDay(now))
}

// SelectDate returns the draft value for candidate, or ok=false when the day
// is in the past and the selection must be ignored.
func SelectDate(candidate, now time.Time) (date string, ok bool) {
	if IsPast(candidate, now) {
		return "", false
	}
	return FormatDate(candidate.In(now.Location())), true
}

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses YYYY-MM.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) first(loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// Next returns the following month.
func (m Month) Next() Month {
	return MonthOf(m.first(time.UTC).AddDate(0, 1, 0))
}

// Prev returns the preceding month, but never one before the month of now:
// every day there would be disabled.
func (m Month) Prev(now time.Time) Month {
	prev := MonthOf(m.first(time.UTC).AddDate(0, -1, 0))
	if prev.Before(MonthOf(now)) {
		return m
	}
	return prev
}

// Before reports whether m is earlier than o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// Day is one cell of a month grid. Blank cells pad the first week so that
// day 1 sits under its weekday column (weeks start on Sunday).
type Day struct {
	Date     string `json:"date,omitempty"`
	Day      int    `json:"day"`
	Blank    bool   `json:"blank,omitempty"`
	Disabled bool   `json:"disabled"`
	Today    bool   `json:"today,omitempty"`
}

// MonthGrid is the calendar view of one month.
type MonthGrid struct {
	Month     string `json:"month"`
	Title     string `json:"title"`
	Prev      string `json:"prev"`
	Next      string `json:"next"`
	CanGoBack bool   `json:"can_go_back"`
	Days      []Day  `json:"days"`
}

// View builds the grid for m as seen at now.
func (m Month) View(now time.Time) MonthGrid {
	loc := now.Location()
	first := m.first(loc)
	days := make([]Day, 0, 42)
	for i := 0; i < int(first.Weekday()); i++ {
		days = append(days, Day{Blank: true, Disabled: true})
	}
	today := StartOfDay(now)
	for d := first; d.Month() == m.Month; d = d.AddDate(0, 0, 1) {
		days = append(days, Day{
			Date:     FormatDate(d),
			Day:      d.Day(),
			Disabled: d.Before(today),
			Today:    d.Equal(today),
		})
	}
	prev := m.Prev(now)
	return MonthGrid{
		Month:     m.String(),
		Title:     first.Format("January 2006"),
		Prev:      prev.String(),
		Next:      m.Next().String(),
		CanGoBack: prev != m,
		Days:      days,
	}
}
