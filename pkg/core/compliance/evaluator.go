// Package compliance evaluates a staff member's shift history against the UK
// Working Time Regulations. Every check is a pure function of shift history,
// staff attributes and a target date: violations are derived on demand,
// never persisted, and never block assignment creation.
package compliance

import (
	"fmt"
	"sort"
	"time"

	"github.com/jrowledge/staff-rota/pkg/core/model"
	"github.com/jrowledge/staff-rota/pkg/core/shifttime"
)

const (
	// rollingWindowWeeks is the reference period for averaging weekly hours
	rollingWindowWeeks = 17
	rollingWindowDays  = rollingWindowWeeks * 7

	// weeklyHoursLimit is the average weekly hours cap absent an opt-out
	weeklyHoursLimit = 48.0

	// contractVarianceHours is how far the rolling average may exceed
	// contracted hours before being flagged
	contractVarianceHours = 2.0

	// quickChangeoverHours is the lower bound of the warning band for daily
	// rest breaches. Gaps of at least this many hours are a common quick
	// changeover with a potential compensatory-rest exception, so they
	// warrant a warning rather than a critical violation.
	quickChangeoverHours = 8.0

	// youngWorkerMaxShiftHours caps a single shift for workers under 18
	youngWorkerMaxShiftHours = 8.0

	// nightClassificationMinutes is how much of a shift must fall in the
	// 23:00-06:00 window for it to count as a night shift in the fairness
	// score
	nightClassificationMinutes = 180
)

// youngWorkerNightWindow is the 22:00-06:00 window young workers must not touch
var youngWorkerNightWindow = shifttime.Interval{Start: 22 * 60, End: 30 * 60}

// fairnessNightWindow is the 23:00-06:00 window used for night classification
var fairnessNightWindow = shifttime.Interval{Start: 23 * 60, End: 30 * 60}

// Fairness score weights
const (
	nightShiftWeight   = 1.5
	weekendShiftWeight = 1.0
	bankHolidayWeight  = 3.0
)

// Evaluator checks shift histories against the working time rules. The bank
// holiday calendar may be nil, in which case no shift counts as a holiday
// shift in the fairness score.
type Evaluator struct {
	constraints  model.Constraints
	bankHolidays *Calendar
}

// NewEvaluator creates an evaluator with the given constraints and calendar
func NewEvaluator(constraints model.Constraints, bankHolidays *Calendar) *Evaluator {
	return &Evaluator{constraints: constraints, bankHolidays: bankHolidays}
}

// Evaluate runs every rule for one staff member at the target date and
// returns all violations found. Daily rest is checked across the rolling
// window; the hour-average rules are evaluated at the window's end; the
// young-worker rules cover the target date's shifts.
func (e *Evaluator) Evaluate(staff model.StaffMember, shifts []model.ShiftAssignment, target time.Time) []model.ComplianceViolation {
	window := windowShifts(shifts, target)

	violations := e.CheckDailyRest(window)
	violations = append(violations, e.CheckWeeklyHours(staff, shifts, target)...)
	violations = append(violations, e.CheckContractVariance(staff, shifts, target)...)
	violations = append(violations, e.CheckYoungWorker(staff, shifts, target)...)
	return violations
}

// CheckDailyRest checks Regulation 10(1): at least the configured rest period
// between consecutive shifts. Gaps in the [8h, rest) range are flagged as
// warnings (quick changeover), anything shorter is critical. Overlapping
// shifts (negative gap) are left to the insertion boundary's conflict
// rejection rather than reported here.
func (e *Evaluator) CheckDailyRest(shifts []model.ShiftAssignment) []model.ComplianceViolation {
	ordered := sortedByStart(shifts)
	restPeriod := e.constraints.RestPeriod()

	var violations []model.ComplianceViolation
	for i := 1; i < len(ordered); i++ {
		prev, next := ordered[i-1], ordered[i]

		_, prevEnd, err := shifttime.AbsoluteRange(prev.Date, prev.StartTime, prev.EndTime)
		if err != nil {
			continue
		}
		nextStart, _, err := shifttime.AbsoluteRange(next.Date, next.StartTime, next.EndTime)
		if err != nil {
			continue
		}

		gap := shifttime.GapHours(prevEnd, nextStart)
		if gap < 0 || gap >= restPeriod {
			continue
		}

		severity := model.SeverityCritical
		if gap >= quickChangeoverHours {
			severity = model.SeverityWarning
		}

		violations = append(violations, model.ComplianceViolation{
			Type:           model.ViolationDailyRest,
			Message:        fmt.Sprintf("Only %.1fh rest before shift starting %s %s (minimum %gh)", gap, next.Date, next.StartTime, restPeriod),
			Severity:       severity,
			Date:           next.Date,
			RelatedShiftID: next.ID,
		})
	}
	return violations
}

// CheckWeeklyHours checks the 48-hour average weekly limit over the 17-week
// rolling window ending at the target date. Members who have signed the
// opt-out are exempt.
func (e *Evaluator) CheckWeeklyHours(staff model.StaffMember, shifts []model.ShiftAssignment, target time.Time) []model.ComplianceViolation {
	if staff.OptedOut48Hour {
		return nil
	}

	average := averageWeeklyHours(shifts, target)
	if average <= weeklyHoursLimit {
		return nil
	}

	return []model.ComplianceViolation{{
		Type:     model.ViolationWeeklyLimit,
		Message:  fmt.Sprintf("%.1fh average weekly hours over the %d-week reference period exceeds the %gh limit", average, rollingWindowWeeks, weeklyHoursLimit),
		Severity: model.SeverityCritical,
		Date:     target.Format(shifttime.DateLayout),
	}}
}

// CheckContractVariance flags a rolling average more than two hours over the
// member's contracted weekly hours. Only the over-contracted direction is
// flagged; a sparse or freshly started roster naturally averages under
// contract and should not raise false positives.
func (e *Evaluator) CheckContractVariance(staff model.StaffMember, shifts []model.ShiftAssignment, target time.Time) []model.ComplianceViolation {
	if staff.ContractedHours <= 0 {
		return nil
	}

	average := averageWeeklyHours(shifts, target)
	if average <= staff.ContractedHours+contractVarianceHours {
		return nil
	}

	return []model.ComplianceViolation{{
		Type:     model.ViolationContractVariance,
		Message:  fmt.Sprintf("%.1fh average weekly hours exceeds contracted %gh by more than %gh", average, staff.ContractedHours, contractVarianceHours),
		Severity: model.SeverityWarning,
		Date:     target.Format(shifttime.DateLayout),
	}}
}

// CheckYoungWorker applies the under-18 rules to the target date's shifts:
// no shift over eight hours, and no work touching the 22:00-06:00 window.
// Members without a recorded date of birth, or 18 and over on the target
// date, are not checked.
func (e *Evaluator) CheckYoungWorker(staff model.StaffMember, shifts []model.ShiftAssignment, target time.Time) []model.ComplianceViolation {
	age := staff.AgeOn(target)
	if age < 0 || age >= 18 {
		return nil
	}

	date := target.Format(shifttime.DateLayout)
	var violations []model.ComplianceViolation

	for _, shift := range shifts {
		if shift.Date != date {
			continue
		}
		iv, err := shifttime.NewInterval(shift.StartTime, shift.EndTime)
		if err != nil {
			continue
		}

		if iv.Hours() > youngWorkerMaxShiftHours {
			violations = append(violations, model.ComplianceViolation{
				Type:           model.ViolationYoungWorkerDaily,
				Message:        fmt.Sprintf("%.1fh shift exceeds the %gh daily limit for workers under 18", iv.Hours(), youngWorkerMaxShiftHours),
				Severity:       model.SeverityCritical,
				Date:           date,
				RelatedShiftID: shift.ID,
			})
		}

		if iv.WindowOverlapMinutes(youngWorkerNightWindow) > 0 {
			violations = append(violations, model.ComplianceViolation{
				Type:           model.ViolationYoungWorkerNight,
				Message:        fmt.Sprintf("Shift %s-%s overlaps the 22:00-06:00 restricted period for workers under 18", shift.StartTime, shift.EndTime),
				Severity:       model.SeverityCritical,
				Date:           date,
				RelatedShiftID: shift.ID,
			})
		}
	}

	return violations
}

// FairnessScore measures how much antisocial working a member has carried
// over the rolling window: night shifts weigh 1.5, weekend shifts 1.0 and
// bank holiday shifts 3.0. A shift counts as a night shift when more than
// three hours of it fall in the 23:00-06:00 window. Used for reporting, not
// blocking.
func (e *Evaluator) FairnessScore(shifts []model.ShiftAssignment, target time.Time) float64 {
	nights, weekends, holidays := 0, 0, 0

	for _, shift := range windowShifts(shifts, target) {
		iv, err := shifttime.NewInterval(shift.StartTime, shift.EndTime)
		if err != nil {
			continue
		}
		day, err := shifttime.ParseDate(shift.Date)
		if err != nil {
			continue
		}

		if iv.WindowOverlapMinutes(fairnessNightWindow) > nightClassificationMinutes {
			nights++
		}
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			weekends++
		}
		if e.bankHolidays.IsBankHoliday(day) {
			holidays++
		}
	}

	return float64(nights)*nightShiftWeight + float64(weekends)*weekendShiftWeight + float64(holidays)*bankHolidayWeight
}

// windowShifts returns the shifts dated within the rolling window ending at
// the target date (inclusive)
func windowShifts(shifts []model.ShiftAssignment, target time.Time) []model.ShiftAssignment {
	targetDay := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	windowStart := targetDay.AddDate(0, 0, -(rollingWindowDays - 1))

	var inWindow []model.ShiftAssignment
	for _, shift := range shifts {
		day, err := shifttime.ParseDate(shift.Date)
		if err != nil {
			continue
		}
		if day.Before(windowStart) || day.After(targetDay) {
			continue
		}
		inWindow = append(inWindow, shift)
	}
	return inWindow
}

// averageWeeklyHours sums shift durations in the rolling window and divides
// by the window length in weeks
func averageWeeklyHours(shifts []model.ShiftAssignment, target time.Time) float64 {
	total := 0.0
	for _, shift := range windowShifts(shifts, target) {
		iv, err := shifttime.NewInterval(shift.StartTime, shift.EndTime)
		if err != nil {
			continue
		}
		total += iv.Hours()
	}
	return total / rollingWindowWeeks
}

// sortedByStart returns a copy of the shifts ordered by date then start time
func sortedByStart(shifts []model.ShiftAssignment) []model.ShiftAssignment {
	ordered := make([]model.ShiftAssignment, len(shifts))
	copy(ordered, shifts)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Date != ordered[j].Date {
			return ordered[i].Date < ordered[j].Date
		}
		return ordered[i].StartTime < ordered[j].StartTime
	})
	return ordered
}
