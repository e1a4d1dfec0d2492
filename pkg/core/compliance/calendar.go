package compliance

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jrowledge/staff-rota/pkg/core/shifttime"
)

// Calendar answers whether a date is a bank holiday. Holidays can be given as
// explicit dates, as recurrence rules, or both; rules cover holidays that
// follow a fixed pattern (e.g. FREQ=YEARLY;BYMONTH=12;BYMONTHDAY=25) while
// explicit dates cover the moveable ones.
type Calendar struct {
	dates map[string]bool
	rules []*rrule.RRule
}

// calendarEpoch anchors rules that do not carry their own DTSTART
var calendarEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// NewCalendar builds a calendar from RRULE strings and explicit dates
func NewCalendar(rules []string, dates []string) (*Calendar, error) {
	cal := &Calendar{dates: make(map[string]bool, len(dates))}

	for _, date := range dates {
		if _, err := shifttime.ParseDate(date); err != nil {
			return nil, fmt.Errorf("invalid bank holiday date: %w", err)
		}
		cal.dates[date] = true
	}

	for i, raw := range rules {
		rule, err := rrule.StrToRRule(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid bank holiday rule [%d] %q: %w", i, raw, err)
		}
		if !strings.Contains(strings.ToUpper(raw), "DTSTART") {
			rule.DTStart(calendarEpoch)
		}
		cal.rules = append(cal.rules, rule)
	}

	return cal, nil
}

// IsBankHoliday reports whether the given day is a bank holiday
func (c *Calendar) IsBankHoliday(day time.Time) bool {
	if c == nil {
		return false
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	if c.dates[dayStart.Format(shifttime.DateLayout)] {
		return true
	}

	dayEnd := dayStart.Add(24*time.Hour - time.Second)
	for _, rule := range c.rules {
		if len(rule.Between(dayStart, dayEnd, true)) > 0 {
			return true
		}
	}
	return false
}
