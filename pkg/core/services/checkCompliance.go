package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jrowledge/staff-rota/internal/config"
	"github.com/jrowledge/staff-rota/pkg/core/compliance"
	"github.com/jrowledge/staff-rota/pkg/core/model"
	"github.com/jrowledge/staff-rota/pkg/db"
)

// CheckComplianceStore defines the database operations CheckCompliance needs
type CheckComplianceStore interface {
	GetStaff(ctx context.Context) ([]db.Staff, error)
	GetShifts(ctx context.Context) ([]db.Shift, error)
}

// StaffCompliance holds one staff member's evaluation results
type StaffCompliance struct {
	Staff         model.StaffMember
	Violations    []model.ComplianceViolation
	FairnessScore float64
}

// ComplianceReport aggregates evaluation results across the whole roster
type ComplianceReport struct {
	From  time.Time
	To    time.Time
	Staff []StaffCompliance

	WarningCount  int
	CriticalCount int
}

// CheckCompliance evaluates every staff member against the working time rules
// over the [from, to] date range. The rolling-average rules are evaluated at
// the range's end; the young-worker rules are checked for each date in the
// range, since they apply per day worked.
func CheckCompliance(ctx context.Context, store CheckComplianceStore, logger *zap.Logger, cfg *config.Config, from, to time.Time) (*ComplianceReport, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid range: end %s is before start %s",
			to.Format("2006-01-02"), from.Format("2006-01-02"))
	}

	logger.Info("Checking compliance",
		zap.String("from", from.Format("2006-01-02")),
		zap.String("to", to.Format("2006-01-02")))

	staffRecords, err := store.GetStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}

	shiftRecords, err := store.GetShifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}

	calendar, err := bankHolidayCalendar(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build bank holiday calendar: %w", err)
	}

	evaluator := compliance.NewEvaluator(constraintsFromConfig(cfg), calendar)

	shiftsByStaff := make(map[string][]model.ShiftAssignment)
	for _, record := range shiftRecords {
		shiftsByStaff[record.StaffID] = append(shiftsByStaff[record.StaffID], shiftFromRecord(record))
	}

	report := &ComplianceReport{From: from, To: to}

	for _, record := range staffRecords {
		member := staffFromRecord(record)
		history := shiftsByStaff[member.ID]

		violations := evaluator.CheckDailyRest(history)
		violations = append(violations, evaluator.CheckWeeklyHours(member, history, to)...)
		violations = append(violations, evaluator.CheckContractVariance(member, history, to)...)
		for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
			violations = append(violations, evaluator.CheckYoungWorker(member, history, day)...)
		}

		for _, violation := range violations {
			switch violation.Severity {
			case model.SeverityCritical:
				report.CriticalCount++
			case model.SeverityWarning:
				report.WarningCount++
			}
		}

		report.Staff = append(report.Staff, StaffCompliance{
			Staff:         member,
			Violations:    violations,
			FairnessScore: evaluator.FairnessScore(history, to),
		})
	}

	logger.Info("Compliance check complete",
		zap.Int("staff", len(report.Staff)),
		zap.Int("warnings", report.WarningCount),
		zap.Int("critical", report.CriticalCount))

	return report, nil
}
