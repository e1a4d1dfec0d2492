package roster

import (
	"time"

	"github.com/jrowledge/staff-rota/pkg/core/model"
	"github.com/jrowledge/staff-rota/pkg/core/shifttime"
)

// GenerationState carries the mutable bookkeeping threaded through both
// generation passes: last known shift end per member, and the fairness
// counters the gap-fill sort keys on.
type GenerationState struct {
	// LastShiftEnd is the absolute end time of each member's most recent
	// committed or pre-existing shift
	LastShiftEnd map[string]time.Time

	// ForcedCount tracks gap-fill assignments per member in this run
	ForcedCount map[string]int

	// NightCount tracks night assignments per member in this run
	NightCount map[string]int

	// RosterIndex is each member's position in the supplied staff list,
	// used as the final deterministic tie-break in gap filling
	RosterIndex map[string]int
}

// newGenerationState seeds the state from the staff list and the existing
// shifts dated before the generation window, so rest checks on the first
// generated day see pre-window history. Existing shifts dated inside the
// window are folded in by the day loop as it reaches their date; a shift
// dated after a day being generated must not constrain it. Shifts with
// unparseable times are skipped rather than failing the whole run; they are
// caller-supplied data, not configuration.
func newGenerationState(staff []model.StaffMember, existing []model.ShiftAssignment, windowStart time.Time) *GenerationState {
	state := &GenerationState{
		LastShiftEnd: make(map[string]time.Time),
		ForcedCount:  make(map[string]int),
		NightCount:   make(map[string]int),
		RosterIndex:  make(map[string]int, len(staff)),
	}

	for i, member := range staff {
		state.RosterIndex[member.ID] = i
	}

	for _, shift := range existing {
		day, err := shifttime.ParseDate(shift.Date)
		if err != nil || !day.Before(windowStart) {
			continue
		}
		_, end, err := shifttime.AbsoluteRange(shift.Date, shift.StartTime, shift.EndTime)
		if err != nil {
			continue
		}
		state.noteShiftEnd(shift.StaffID, end)
	}

	return state
}

// noteShiftEnd records a shift end without touching the fairness counters,
// used for pre-existing shifts as the day loop passes them
func (s *GenerationState) noteShiftEnd(staffID string, end time.Time) {
	if current, ok := s.LastShiftEnd[staffID]; !ok || end.After(current) {
		s.LastShiftEnd[staffID] = end
	}
}

// recordCommit updates the state after an assignment is committed in either pass
func (s *GenerationState) recordCommit(staffID string, code model.ShiftCode, end time.Time, forced bool) {
	s.noteShiftEnd(staffID, end)
	if code == model.ShiftNight {
		s.NightCount[staffID]++
	}
	if forced {
		s.ForcedCount[staffID]++
	}
}
