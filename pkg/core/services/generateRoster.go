package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jrowledge/staff-rota/internal/config"
	"github.com/jrowledge/staff-rota/pkg/core/model"
	"github.com/jrowledge/staff-rota/pkg/core/roster"
	"github.com/jrowledge/staff-rota/pkg/db"
)

// GenerateRosterStore defines the database operations GenerateRoster needs
type GenerateRosterStore interface {
	GetStaff(ctx context.Context) ([]db.Staff, error)
	GetShifts(ctx context.Context) ([]db.Shift, error)
	InsertShifts(ctx context.Context, shifts []db.Shift) error
}

// GenerateResult represents the result of a roster generation run
type GenerateResult struct {
	VersionID    string
	Assignments  []model.ShiftAssignment
	Shortfalls   []model.Shortfall
	FilledByCode map[model.ShiftCode]int
}

// GenerateRoster loads staff and existing shifts from the store, runs the
// generator over the requested window and persists the generated assignments.
// With dryRun set, nothing is written; the result is returned for inspection.
func GenerateRoster(ctx context.Context, store GenerateRosterStore, logger *zap.Logger, cfg *config.Config, start time.Time, numWeeks int, dryRun bool) (*GenerateResult, error) {
	logger.Info("Generating roster",
		zap.String("start", start.Format("2006-01-02")),
		zap.Int("num_weeks", numWeeks),
		zap.Bool("dry_run", dryRun))

	staffRecords, err := store.GetStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}
	logger.Debug("Staff loaded", zap.Int("count", len(staffRecords)))

	shiftRecords, err := store.GetShifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}
	logger.Debug("Existing shifts loaded", zap.Int("count", len(shiftRecords)))

	dailyRequirements, err := resolveDailyRequirements(cfg, start, numWeeks*7)
	if err != nil {
		return nil, err
	}

	versionID := uuid.New().String()
	outcome, err := roster.Generate(roster.GenerationConfig{
		StartDate:         start,
		NumWeeks:          numWeeks,
		Requirements:      requirementsFromMap(cfg.Requirements),
		DailyRequirements: dailyRequirements,
		Staff:             staffFromRecords(staffRecords),
		Constraints:       constraintsFromConfig(cfg),
		ExistingShifts:    shiftsFromRecords(shiftRecords),
		Pattern:           patternFromConfig(cfg),
		InitialOffsets:    cfg.InitialOffsets,
		ShiftTimes:        shiftTimesFromConfig(cfg),
		VersionID:         versionID,
	})
	if err != nil {
		return nil, fmt.Errorf("roster generation failed: %w", err)
	}

	filled := make(map[model.ShiftCode]int)
	for _, assignment := range outcome.Assignments {
		filled[assignment.Code]++
	}

	logger.Info("Generation complete",
		zap.String("version_id", versionID),
		zap.Int("assignments", len(outcome.Assignments)),
		zap.Int("shortfalls", len(outcome.Shortfalls)))

	for _, shortfall := range outcome.Shortfalls {
		logger.Warn("Coverage shortfall",
			zap.String("date", shortfall.Date),
			zap.String("staff_id", shortfall.StaffID),
			zap.String("code", string(shortfall.Code)),
			zap.String("reason", shortfall.Reason))
	}

	if !dryRun && len(outcome.Assignments) > 0 {
		if err := store.InsertShifts(ctx, shiftsToRecords(outcome.Assignments)); err != nil {
			return nil, fmt.Errorf("failed to persist generated assignments: %w", err)
		}
		logger.Info("Assignments persisted", zap.Int("count", len(outcome.Assignments)))
	}

	return &GenerateResult{
		VersionID:    versionID,
		Assignments:  outcome.Assignments,
		Shortfalls:   outcome.Shortfalls,
		FilledByCode: filled,
	}, nil
}
