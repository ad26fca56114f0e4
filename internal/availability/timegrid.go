package availability

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	gridStartMinutes = 8 * 60
	gridEndMinutes   = 20 * 60
	gridStepMinutes  = 30
)

var (
	ErrInvalidTime    = errors.New("availability: time is not on the half-hour grid")
	ErrEndBeforeStart = errors.New("availability: end time must be after start time")
	ErrInvalidRange   = errors.New("availability: invalid time range")
)

var grid = buildGrid()

func buildGrid() []string {
	out := make([]string, 0, (gridEndMinutes-gridStartMinutes)/gridStepMinutes+1)
	for m := gridStartMinutes; m <= gridEndMinutes; m += gridStepMinutes {
		out = append(out, formatClock(m))
	}
	return out
}

// TimeGrid returns 08:00, 08:30, ..., 20:00.
func TimeGrid() []string {
	return append([]string(nil), grid...)
}

// EndOptions returns the grid values strictly after start. An empty start
// returns the whole grid; a start off the grid returns nothing.
func EndOptions(start string) []string {
	if start == "" {
		return TimeGrid()
	}
	s, err := ParseClock(start)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(grid))
	for _, v := range grid {
		if m, _ := ParseClock(v); m > s {
			out = append(out, v)
		}
	}
	return out
}

// ParseClock converts a grid value HH:MM into minutes after midnight.
func ParseClock(v string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(v), ":")
	if !ok || len(hh) != 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, v)
	}
	h, errH := strconv.Atoi(hh)
	m, errM := strconv.Atoi(mm)
	if errH != nil || errM != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, v)
	}
	total := h*60 + m
	if total < gridStartMinutes || total > gridEndMinutes || (total-gridStartMinutes)%gridStepMinutes != 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, v)
	}
	return total, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// TimePicker holds a start/end selection on the grid. The zero value is an
// empty selection. End is always strictly after Start when both are set.
type TimePicker struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SetStart selects the start time. An end time that no longer follows the
// new start is cleared. An empty value clears the start.
func (p *TimePicker) SetStart(start string) error {
	if start == "" {
		p.Start = ""
		return nil
	}
	s, err := ParseClock(start)
	if err != nil {
		return err
	}
	p.Start = start
	if p.End != "" {
		if e, _ := ParseClock(p.End); e <= s {
			p.End = ""
		}
	}
	return nil
}

// SetEnd selects the end time. It must be on the grid and after the start.
// An empty value clears the end.
func (p *TimePicker) SetEnd(end string) error {
	if end == "" {
		p.End = ""
		return nil
	}
	e, err := ParseClock(end)
	if err != nil {
		return err
	}
	if p.Start != "" {
		if s, _ := ParseClock(p.Start); e <= s {
			return fmt.Errorf("%w: %s-%s", ErrEndBeforeStart, p.Start, end)
		}
	}
	p.End = end
	return nil
}

// EndOptions returns the valid end times for the current start.
func (p TimePicker) EndOptions() []string {
	return EndOptions(p.Start)
}

// Complete reports whether both ends are chosen.
func (p TimePicker) Complete() bool {
	return p.Start != "" && p.End != ""
}

// Range renders "HH:MM-HH:MM", or "" when incomplete.
func (p TimePicker) Range() string {
	if !p.Complete() {
		return ""
	}
	return p.Start + "-" + p.End
}

// Duration is end minus start, or zero when incomplete.
func (p TimePicker) Duration() time.Duration {
	if !p.Complete() {
		return 0
	}
	s, _ := ParseClock(p.Start)
	e, _ := ParseClock(p.End)
	return time.Duration(e-s) * time.Minute
}

// DurationLabel renders Duration for display, e.g. "2 hours 30 minutes".
func (p TimePicker) DurationLabel() string {
	return FormatDuration(p.Duration())
}

// ParseRange parses "HH:MM-HH:MM". An empty string is an empty picker.
func ParseRange(r string) (TimePicker, error) {
	var p TimePicker
	if r == "" {
		return p, nil
	}
	start, end, ok := strings.Cut(r, "-")
	if !ok {
		return p, fmt.Errorf("%w: %q", ErrInvalidRange, r)
	}
	if err := p.SetStart(start); err != nil {
		return TimePicker{}, err
	}
	if err := p.SetEnd(end); err != nil {
		return TimePicker{}, err
	}
	return p, nil
}

// FormatDuration renders whole hours plus remaining minutes.
func FormatDuration(d time.Duration) string {
	total := int(d / time.Minute)
	if total <= 0 {
		return ""
	}
	hours, minutes := total/60, total%60
	var parts []string
	switch hours {
	case 0:
	case 1:
		parts = append(parts, "1 hour")
	default:
		parts = append(parts, strconv.Itoa(hours)+" hours")
	}
	switch minutes {
	case 0:
	case 1:
		parts = append(parts, "1 minute")
	default:
		parts = append(parts, strconv.Itoa(minutes)+" minutes")
	}
	return strings.Join(parts, " ")
}
