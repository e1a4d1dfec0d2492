package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/jrowledge/staff-rota/internal/config"
	"github.com/jrowledge/staff-rota/pkg/core/compliance"
	"github.com/jrowledge/staff-rota/pkg/core/model"
	"github.com/jrowledge/staff-rota/pkg/core/roster"
	"github.com/jrowledge/staff-rota/pkg/core/shifttime"
	"github.com/jrowledge/staff-rota/pkg/db"
)

// Conversions between database records, configuration and the core model.
// The core works on one canonical shape; everything crossing the boundary is
// normalized here, in one place.

func staffFromRecord(record db.Staff) model.StaffMember {
	return model.StaffMember{
		ID:              record.ID,
		Name:            record.Name,
		Role:            record.Role,
		HourlyRate:      record.HourlyRate,
		ContractedHours: record.ContractedHours,
		DateOfBirth:     record.DateOfBirth,
		OptedOut48Hour:  record.OptedOut48Hour,
	}
}

func staffFromRecords(records []db.Staff) []model.StaffMember {
	staff := make([]model.StaffMember, len(records))
	for i, record := range records {
		staff[i] = staffFromRecord(record)
	}
	return staff
}

func shiftFromRecord(record db.Shift) model.ShiftAssignment {
	return model.ShiftAssignment{
		ID:           record.ID,
		VersionID:    record.VersionID,
		Date:         record.Date,
		StartTime:    record.StartTime,
		EndTime:      record.EndTime,
		Code:         model.ShiftCode(record.Code),
		StaffID:      record.StaffID,
		IsForced:     record.IsForced,
		ForcedReason: record.ForcedReason,
	}
}

func shiftsFromRecords(records []db.Shift) []model.ShiftAssignment {
	shifts := make([]model.ShiftAssignment, len(records))
	for i, record := range records {
		shifts[i] = shiftFromRecord(record)
	}
	return shifts
}

func shiftToRecord(shift model.ShiftAssignment) db.Shift {
	return db.Shift{
		ID:           shift.ID,
		VersionID:    shift.VersionID,
		Date:         shift.Date,
		StartTime:    shift.StartTime,
		EndTime:      shift.EndTime,
		Code:         string(shift.Code),
		StaffID:      shift.StaffID,
		IsForced:     shift.IsForced,
		ForcedReason: shift.ForcedReason,
	}
}

func shiftsToRecords(shifts []model.ShiftAssignment) []db.Shift {
	records := make([]db.Shift, len(shifts))
	for i, shift := range shifts {
		records[i] = shiftToRecord(shift)
	}
	return records
}

func constraintsFromConfig(cfg *config.Config) model.Constraints {
	return model.Constraints{RestPeriodHours: cfg.RestPeriodHours}
}

func patternFromConfig(cfg *config.Config) roster.PatternSequence {
	pattern := make(roster.PatternSequence, len(cfg.Pattern))
	for i, code := range cfg.Pattern {
		pattern[i] = model.ShiftCode(code)
	}
	return pattern
}

func requirementsFromMap(raw map[string]int) map[model.ShiftCode]int {
	requirements := make(map[model.ShiftCode]int, len(raw))
	for code, count := range raw {
		requirements[model.ShiftCode(code)] = count
	}
	return requirements
}

func shiftTimesFromConfig(cfg *config.Config) model.ShiftTimeStandards {
	standards := make(model.ShiftTimeStandards, len(cfg.ShiftTimes))
	for code, times := range cfg.ShiftTimes {
		standards[model.ShiftCode(code)] = model.ShiftTimes{Start: times.Start, End: times.End}
	}
	return standards
}

func bankHolidayCalendar(cfg *config.Config) (*compliance.Calendar, error) {
	return compliance.NewCalendar(cfg.BankHolidayRules, cfg.BankHolidays)
}

// resolveDailyRequirements expands the config's requirement overrides into a
// per-date requirements map for the generation window. Later overrides win on
// dates matched by more than one rule.
func resolveDailyRequirements(cfg *config.Config, start time.Time, totalDays int) (map[string]map[model.ShiftCode]int, error) {
	if len(cfg.RequirementOverrides) == 0 {
		return nil, nil
	}

	windowStart := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	windowEnd := windowStart.AddDate(0, 0, totalDays-1).Add(24*time.Hour - time.Second)

	daily := make(map[string]map[model.ShiftCode]int)
	for i, override := range cfg.RequirementOverrides {
		rule, err := rrule.StrToRRule(override.RRule)
		if err != nil {
			return nil, fmt.Errorf("invalid rrule in requirementOverrides[%d]: %w", i, err)
		}
		if !strings.Contains(strings.ToUpper(override.RRule), "DTSTART") {
			rule.DTStart(windowStart)
		}

		for _, occurrence := range rule.Between(windowStart, windowEnd, true) {
			date := occurrence.Format(shifttime.DateLayout)
			daily[date] = requirementsFromMap(override.Requirements)
		}
	}

	return daily, nil
}
