package db

import "time"

// Staff represents a database staff record
type Staff struct {
	ID              string
	Name            string
	Role            string
	HourlyRate      float64
	ContractedHours float64
	DateOfBirth     *time.Time
	OptedOut48Hour  bool
}

// Shift represents a database shift record. Clock times are stored as "HH:MM"
// strings; an end time before the start time means the shift runs into the
// next calendar day.
type Shift struct {
	ID           string
	VersionID    string
	Date         string // "2006-01-02"
	StartTime    string // "HH:MM"
	EndTime      string // "HH:MM"
	Code         string
	StaffID      string
	IsForced     bool
	ForcedReason string
}
