package roster

import (
	"fmt"
	"time"

	"github.com/jrowledge/staff-rota/pkg/core/model"
	"github.com/jrowledge/staff-rota/pkg/core/shifttime"
)

// RestCheck is the outcome of a rest-safety check. Reason is set only when
// the check disallows the assignment.
type RestCheck struct {
	Allowed bool
	Reason  string
}

// CheckRestSafety decides whether a candidate shift starting at shiftStart is
// physically safe to assign, given the staff member's last known shift end.
// A member with no prior shift end on record is always allowed. Otherwise the
// gap between the last end and the candidate start must be at least the
// configured rest period.
//
// This is the hard pre-commit rule shared by generation and backfill; it is
// distinct from the compliance evaluator's advisory daily-rest check.
func CheckRestSafety(staffID string, shiftStart time.Time, lastShiftEnd map[string]time.Time, constraints model.Constraints) RestCheck {
	lastEnd, known := lastShiftEnd[staffID]
	if !known {
		return RestCheck{Allowed: true}
	}

	gap := shifttime.GapHours(lastEnd, shiftStart)
	restPeriod := constraints.RestPeriod()
	if gap < restPeriod {
		return RestCheck{
			Allowed: false,
			Reason:  fmt.Sprintf("Insufficient rest (%.1fh < %gh)", gap, restPeriod),
		}
	}

	return RestCheck{Allowed: true}
}
