package postgres

import (
	"context"
	"fmt"

	"github.com/jrowledge/staff-rota/pkg/db"
)

// GetStaff retrieves all staff records
func (d *DB) GetStaff(ctx context.Context) ([]db.Staff, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, role, hourly_rate, contracted_hours, date_of_birth, opted_out_48_hour
		FROM staff
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	var staff []db.Staff
	for rows.Next() {
		var s db.Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Role, &s.HourlyRate, &s.ContractedHours, &s.DateOfBirth, &s.OptedOut48Hour); err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		staff = append(staff, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staff: %w", err)
	}

	return staff, nil
}

// InsertStaff inserts a new staff record
func (d *DB) InsertStaff(ctx context.Context, staff *db.Staff) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO staff (id, name, role, hourly_rate, contracted_hours, date_of_birth, opted_out_48_hour)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, staff.ID, staff.Name, staff.Role, staff.HourlyRate, staff.ContractedHours, staff.DateOfBirth, staff.OptedOut48Hour)
	if err != nil {
		return fmt.Errorf("failed to insert staff: %w", err)
	}
	return nil
}

// DeleteStaff removes a staff member and all of their shifts in one
// transaction. Returns db.ErrNotFound when no staff record matches.
func (d *DB) DeleteStaff(ctx context.Context, staffID string) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM shift WHERE staff_id = $1`, staffID); err != nil {
		return fmt.Errorf("failed to delete shifts for staff %s: %w", staffID, err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM staff WHERE id = $1`, staffID)
	if err != nil {
		return fmt.Errorf("failed to delete staff %s: %w", staffID, err)
	}
	if tag.RowsAffected() == 0 {
		return db.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit staff deletion: %w", err)
	}
	return nil
}
