package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jrowledge/staff-rota/internal/config"
	"github.com/jrowledge/staff-rota/pkg/core/backfill"
	"github.com/jrowledge/staff-rota/pkg/core/model"
	"github.com/jrowledge/staff-rota/pkg/core/shifttime"
	"github.com/jrowledge/staff-rota/pkg/db"
)

// BackfillStore defines the database operations BackfillSlot needs
type BackfillStore interface {
	GetStaff(ctx context.Context) ([]db.Staff, error)
	GetShifts(ctx context.Context) ([]db.Shift, error)
	InsertShift(ctx context.Context, shift *db.Shift) error
}

// BackfillResult represents the outcome of a backfill request
type BackfillResult struct {
	Slot       backfill.OpenSlot
	Candidates []model.StaffMember

	// Committed is the assignment created for the top candidate when the
	// request asked to commit, nil otherwise
	Committed *model.ShiftAssignment
}

// BackfillSlot ranks candidates for an open slot on the given date and,
// when commit is set, assigns the top candidate as a forced assignment.
func BackfillSlot(ctx context.Context, store BackfillStore, logger *zap.Logger, cfg *config.Config, date string, code model.ShiftCode, commit bool) (*BackfillResult, error) {
	if _, err := shifttime.ParseDate(date); err != nil {
		return nil, err
	}
	if code.IsRest() || !code.IsValid() {
		return nil, fmt.Errorf("cannot backfill shift code %q", code)
	}

	clock, ok := shiftTimesFromConfig(cfg)[code]
	if !ok {
		defaults := model.DefaultShiftTimeStandards()
		clock, ok = defaults[code]
	}
	if !ok {
		return nil, fmt.Errorf("no shift times for code %q", code)
	}

	slot := backfill.OpenSlot{
		Date:      date,
		Code:      code,
		StartTime: clock.Start,
		EndTime:   clock.End,
	}

	logger.Info("Ranking backfill candidates",
		zap.String("date", date),
		zap.String("code", string(code)))

	staffRecords, err := store.GetStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}
	shiftRecords, err := store.GetShifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shifts: %w", err)
	}

	pool := staffFromRecords(staffRecords)
	allShifts := shiftsFromRecords(shiftRecords)
	constraints := constraintsFromConfig(cfg)

	candidates := backfill.SelectCandidates(slot, pool, constraints, allShifts)
	logger.Info("Candidates ranked",
		zap.Int("eligible", len(candidates)),
		zap.Int("pool", len(pool)))

	result := &BackfillResult{Slot: slot, Candidates: candidates}

	if !commit {
		return result, nil
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no safe candidates available for %s on %s", code, date)
	}

	chosen := candidates[0]
	assignment := model.ShiftAssignment{
		ID:           uuid.New().String(),
		Date:         date,
		StartTime:    clock.Start,
		EndTime:      clock.End,
		Code:         code,
		StaffID:      chosen.ID,
		IsForced:     true,
		ForcedReason: "Backfill",
	}

	record := shiftToRecord(assignment)
	if err := store.InsertShift(ctx, &record); err != nil {
		return nil, fmt.Errorf("failed to insert backfill assignment: %w", err)
	}

	logger.Info("Backfill committed",
		zap.String("staff_id", chosen.ID),
		zap.String("assignment_id", assignment.ID))

	result.Committed = &assignment
	return result, nil
}
