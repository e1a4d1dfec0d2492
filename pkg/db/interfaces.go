package db

import (
	"context"
	"errors"
)

// ErrShiftConflict is returned when inserting a shift that overlaps an
// existing shift for the same staff member. Overlaps are rejected outright,
// never merged.
var ErrShiftConflict = errors.New("shift conflicts with an existing assignment")

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// StaffStore defines the interface for staff database operations
type StaffStore interface {
	GetStaff(ctx context.Context) ([]Staff, error)
	InsertStaff(ctx context.Context, staff *Staff) error
	// DeleteStaff removes a staff member and cascades to their shifts
	DeleteStaff(ctx context.Context, staffID string) error
}

// ShiftStore defines the interface for shift database operations
type ShiftStore interface {
	GetShifts(ctx context.Context) ([]Shift, error)
	GetShiftsForStaff(ctx context.Context, staffID string) ([]Shift, error)
	// InsertShift rejects overlapping same-staff shifts with ErrShiftConflict
	InsertShift(ctx context.Context, shift *Shift) error
	InsertShifts(ctx context.Context, shifts []Shift) error
	DeleteShift(ctx context.Context, shiftID string) error
}

// Database defines the interface for all database operations
type Database interface {
	StaffStore
	ShiftStore
}
