// Package shifttime provides the clock and interval arithmetic shared by the
// roster generator, the backfill scorer and the compliance evaluator.
//
// All calculations are done in minutes from the midnight that starts a shift's
// calendar date. An end time numerically before the start time means the shift
// wraps past midnight, so interval end points may exceed 1440. Comparisons
// between intervals anchored on different days are handled by checking the
// interval against copies of the other shifted by ±1440 minutes.
package shifttime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// MinutesPerDay is the length of one calendar day in minutes
	MinutesPerDay = 1440

	// DateLayout is the calendar date format used throughout the core
	DateLayout = "2006-01-02"
)

// ParseClock parses an "HH:MM" clock time into minutes from midnight
func ParseClock(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q: expected HH:MM", clock)
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", clock, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", clock, err)
	}

	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid clock time %q: out of range", clock)
	}

	return hours*60 + minutes, nil
}

// Interval is a span of minutes measured from the midnight of its anchor date.
// End is always strictly greater than Start; overnight shifts have End > 1440.
type Interval struct {
	Start int
	End   int
}

// NewInterval builds an interval from start and end clock times. An end time
// at or before the start time is treated as the following calendar day.
func NewInterval(start, end string) (Interval, error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}

	if endMin <= startMin {
		endMin += MinutesPerDay
	}

	return Interval{Start: startMin, End: endMin}, nil
}

// Duration returns the interval's length
func (iv Interval) Duration() time.Duration {
	return time.Duration(iv.End-iv.Start) * time.Minute
}

// Hours returns the interval's length in hours
func (iv Interval) Hours() float64 {
	return float64(iv.End-iv.Start) / 60.0
}

// OverlapMinutes returns how many minutes of iv fall inside other when both
// are anchored on the same date
func (iv Interval) OverlapMinutes(other Interval) int {
	lo := max(iv.Start, other.Start)
	hi := min(iv.End, other.End)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// WindowOverlapMinutes returns how many minutes of the interval fall inside
// the window, counting the window's previous-day and next-day occurrences as
// well. A long shift can legitimately touch the same clock window twice, so
// the three contributions are summed.
func (iv Interval) WindowOverlapMinutes(window Interval) int {
	total := 0
	for _, delta := range []int{-MinutesPerDay, 0, MinutesPerDay} {
		shifted := Interval{Start: window.Start + delta, End: window.End + delta}
		total += iv.OverlapMinutes(shifted)
	}
	return total
}

// OverlapsOnDate reports whether two intervals anchored on the same calendar
// date overlap in wall-clock time. Both intervals count minutes from the same
// midnight and overnight ends already extend past 1440, so a direct comparison
// is exact; the ±1440 window shifts are only for clock windows that recur
// every day.
func (iv Interval) OverlapsOnDate(other Interval) bool {
	return iv.OverlapMinutes(other) > 0
}

// ParseDate parses a "2006-01-02" calendar date at midnight UTC
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}

// At returns the absolute time that is the given number of minutes after
// midnight on the given date. Minutes past 1440 roll into the next day.
func At(date string, minutes int) (time.Time, error) {
	day, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(minutes) * time.Minute), nil
}

// AbsoluteRange resolves a shift's date and clock times into absolute start
// and end timestamps, with the end rolled into the next day for overnight
// shifts.
func AbsoluteRange(date, start, end string) (time.Time, time.Time, error) {
	iv, err := NewInterval(start, end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	startAt, err := At(date, iv.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endAt, err := At(date, iv.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return startAt, endAt, nil
}

// GapHours returns the whole gap in hours between a shift ending at prevEnd
// and a shift starting at nextStart. Negative when the two overlap.
func GapHours(prevEnd, nextStart time.Time) float64 {
	return nextStart.Sub(prevEnd).Hours()
}
