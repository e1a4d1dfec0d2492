package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jrowledge/staff-rota/pkg/core/shifttime"
	"github.com/jrowledge/staff-rota/pkg/db"
)

// GetShifts retrieves all shift records
func (d *DB) GetShifts(ctx context.Context) ([]db.Shift, error) {
	return d.queryShifts(ctx, `
		SELECT id, version_id, shift_date, start_time, end_time, code, staff_id, is_forced, forced_reason
		FROM shift
		ORDER BY shift_date, start_time, staff_id
	`)
}

// GetShiftsForStaff retrieves all shift records for one staff member
func (d *DB) GetShiftsForStaff(ctx context.Context, staffID string) ([]db.Shift, error) {
	return d.queryShifts(ctx, `
		SELECT id, version_id, shift_date, start_time, end_time, code, staff_id, is_forced, forced_reason
		FROM shift
		WHERE staff_id = $1
		ORDER BY shift_date, start_time
	`, staffID)
}

// InsertShift inserts a shift after checking it does not overlap any existing
// shift for the same staff member. Overlaps are rejected with
// db.ErrShiftConflict; a non-overlapping second shift on the same date (a
// split shift) is allowed. The check and the insert run in one transaction.
func (d *DB) InsertShift(ctx context.Context, shift *db.Shift) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertShiftTx(ctx, tx, shift); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit shift insertion: %w", err)
	}
	return nil
}

// InsertShifts inserts a batch of shifts with the same conflict checking as
// InsertShift. The whole batch runs in one transaction: one conflict rolls
// back everything.
func (d *DB) InsertShifts(ctx context.Context, shifts []db.Shift) error {
	if len(shifts) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i := range shifts {
		if err := insertShiftTx(ctx, tx, &shifts[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit shift insertions: %w", err)
	}
	return nil
}

// DeleteShift removes a shift record
func (d *DB) DeleteShift(ctx context.Context, shiftID string) error {
	tag, err := d.pool.Exec(ctx, `DELETE FROM shift WHERE id = $1`, shiftID)
	if err != nil {
		return fmt.Errorf("failed to delete shift %s: %w", shiftID, err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}
	return nil
}

func insertShiftTx(ctx context.Context, tx pgx.Tx, shift *db.Shift) error {
	newStart, newEnd, err := shifttime.AbsoluteRange(shift.Date, shift.StartTime, shift.EndTime)
	if err != nil {
		return fmt.Errorf("invalid shift times: %w", err)
	}

	// An overnight shift from the previous day can run into this one, so the
	// conflict scan covers the adjacent dates as well
	day, err := shifttime.ParseDate(shift.Date)
	if err != nil {
		return fmt.Errorf("invalid shift date: %w", err)
	}
	scanFrom := day.AddDate(0, 0, -1)
	scanTo := day.AddDate(0, 0, 1)

	rows, err := tx.Query(ctx, `
		SELECT id, shift_date, start_time, end_time
		FROM shift
		WHERE staff_id = $1 AND shift_date BETWEEN $2 AND $3
	`, shift.StaffID, scanFrom, scanTo)
	if err != nil {
		return fmt.Errorf("failed to query existing shifts: %w", err)
	}

	type existing struct {
		id    string
		date  time.Time
		start string
		end   string
	}
	var neighbours []existing
	for rows.Next() {
		var e existing
		if err := rows.Scan(&e.id, &e.date, &e.start, &e.end); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan existing shift: %w", err)
		}
		neighbours = append(neighbours, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating existing shifts: %w", err)
	}

	for _, e := range neighbours {
		existingStart, existingEnd, err := shifttime.AbsoluteRange(e.date.Format(shifttime.DateLayout), e.start, e.end)
		if err != nil {
			continue
		}
		if newStart.Before(existingEnd) && existingStart.Before(newEnd) {
			return fmt.Errorf("shift for staff %s on %s overlaps shift %s: %w",
				shift.StaffID, shift.Date, e.id, db.ErrShiftConflict)
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO shift (id, version_id, shift_date, start_time, end_time, code, staff_id, is_forced, forced_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, shift.ID, shift.VersionID, shift.Date, shift.StartTime, shift.EndTime, shift.Code, shift.StaffID, shift.IsForced, shift.ForcedReason)
	if err != nil {
		return fmt.Errorf("failed to insert shift: %w", err)
	}
	return nil
}

func (d *DB) queryShifts(ctx context.Context, query string, args ...any) ([]db.Shift, error) {
	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []db.Shift
	for rows.Next() {
		var s db.Shift
		var date time.Time
		if err := rows.Scan(&s.ID, &s.VersionID, &date, &s.StartTime, &s.EndTime, &s.Code, &s.StaffID, &s.IsForced, &s.ForcedReason); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		s.Date = date.Format(shifttime.DateLayout)
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}
