package model

import "time"

// ShiftCode identifies a shift template by its single-letter tag.
type ShiftCode string

const (
	ShiftEarly   ShiftCode = "E" // early shift
	ShiftLate    ShiftCode = "L" // late shift
	ShiftNight   ShiftCode = "N" // night shift
	ShiftLongDay ShiftCode = "D" // 12-hour day shift
	ShiftRest    ShiftCode = "R" // rest day, never staffed
)

// IsValid returns true if the code is one of the recognised shift codes
func (c ShiftCode) IsValid() bool {
	switch c {
	case ShiftEarly, ShiftLate, ShiftNight, ShiftLongDay, ShiftRest:
		return true
	}
	return false
}

// IsRest returns true for the rest marker, which carries no working time
func (c ShiftCode) IsRest() bool {
	return c == ShiftRest
}

// StaffMember represents a rostered member of staff
type StaffMember struct {
	ID              string
	Name            string
	Role            string
	HourlyRate      float64
	ContractedHours float64 // contracted hours per week

	// DateOfBirth is nil when unknown; young-worker rules only apply when it is set
	DateOfBirth *time.Time

	// OptedOut48Hour indicates the member has signed a 48-hour working time opt-out
	OptedOut48Hour bool
}

// AgeOn returns the member's age in whole years on the given date, or -1 if
// the date of birth is unknown. Month/day boundaries are respected, so a
// birthday falling on the target date counts as already reached.
func (s *StaffMember) AgeOn(date time.Time) int {
	if s.DateOfBirth == nil {
		return -1
	}
	dob := *s.DateOfBirth
	age := date.Year() - dob.Year()
	if date.Month() < dob.Month() || (date.Month() == dob.Month() && date.Day() < dob.Day()) {
		age--
	}
	return age
}

// ShiftAssignment represents a single shift assigned to a staff member on a date.
// StartTime and EndTime are "HH:MM" clock times; an end time numerically before
// the start time means the shift runs past midnight into the next calendar day.
type ShiftAssignment struct {
	ID        string
	VersionID string
	Date      string // "2006-01-02"
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
	Code      ShiftCode
	StaffID   string

	// IsForced marks a gap-fill assignment made outside the natural pattern
	// rotation. ForcedReason is set if and only if IsForced is true.
	IsForced     bool
	ForcedReason string
}

// ShiftTimes holds the start and end clock times for a shift template
type ShiftTimes struct {
	Start string // "HH:MM"
	End   string // "HH:MM"
}

// ShiftTimeStandards maps shift codes to their default clock times
type ShiftTimeStandards map[ShiftCode]ShiftTimes

// DefaultShiftTimeStandards returns the standard shift times used when a
// roster does not define its own
func DefaultShiftTimeStandards() ShiftTimeStandards {
	return ShiftTimeStandards{
		ShiftEarly:   {Start: "06:00", End: "14:00"},
		ShiftLate:    {Start: "14:00", End: "22:00"},
		ShiftNight:   {Start: "22:00", End: "06:00"},
		ShiftLongDay: {Start: "07:00", End: "19:00"},
	}
}

// DefaultRestPeriodHours is the statutory minimum daily rest between shifts
const DefaultRestPeriodHours = 11.0

// Constraints holds the tunable rules applied during generation and compliance checks
type Constraints struct {
	// RestPeriodHours is the minimum gap between one shift's end and the next
	// shift's start. Zero means "use the default".
	RestPeriodHours float64
}

// RestPeriod returns the configured rest period, falling back to the default
func (c Constraints) RestPeriod() float64 {
	if c.RestPeriodHours <= 0 {
		return DefaultRestPeriodHours
	}
	return c.RestPeriodHours
}

// ViolationType identifies which working time rule a violation relates to
type ViolationType string

const (
	ViolationDailyRest        ViolationType = "DAILY_REST"
	ViolationWeeklyLimit      ViolationType = "WEEKLY_LIMIT"
	ViolationContractVariance ViolationType = "CONTRACT_VARIANCE"
	ViolationYoungWorkerDaily ViolationType = "YOUNG_WORKER_DAILY"
	ViolationYoungWorkerNight ViolationType = "YW_NIGHT"
)

// Severity classifies how serious a compliance violation is
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ComplianceViolation is advisory data describing a breach of a working time
// rule. Violations are derived on demand from shift history and staff
// attributes; they are never persisted and never block assignment creation.
type ComplianceViolation struct {
	Type           ViolationType
	Message        string
	Severity       Severity
	Date           string // "2006-01-02"
	RelatedShiftID string // empty when the violation is not tied to one shift
}

// ShortfallAllCandidates is used as the staff ID on a shortfall when every
// remaining candidate was rejected, rather than one specific member
const ShortfallAllCandidates = "ALL_CANDIDATES"

// Shortfall records a failure to meet a coverage requirement. Shortfalls are
// reported data, not errors: generation always completes and returns them
// alongside the assignments it did make.
type Shortfall struct {
	Date    string // "2006-01-02"
	StaffID string // specific member, or ShortfallAllCandidates
	Code    ShiftCode
	Reason  string
}
