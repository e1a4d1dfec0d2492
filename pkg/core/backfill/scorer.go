// Package backfill ranks candidates for an open shift slot. Safety rules
// (no double-booking, rest compliance) hard-block a candidate; among safe
// candidates, those carrying the lightest current workload rank first.
package backfill

import (
	"sort"
	"time"

	"github.com/jrowledge/staff-rota/pkg/core/model"
	"github.com/jrowledge/staff-rota/pkg/core/roster"
	"github.com/jrowledge/staff-rota/pkg/core/shifttime"
)

// IneligibleScore is the sentinel score for candidates who cannot take the
// slot. Any score at or above it means "do not assign".
const IneligibleScore = 10000

// workloadWeight converts a candidate's existing shift count into score
const workloadWeight = 5

// OpenSlot describes a shift that needs covering
type OpenSlot struct {
	Date      string // "2006-01-02"
	Code      model.ShiftCode
	StartTime string // "HH:MM"
	EndTime   string // "HH:MM"
}

// ScoreCandidate scores a candidate for the open slot; lower is better.
//
// A candidate scores IneligibleScore if any of their existing shifts overlaps
// the slot in wall-clock time, including an overnight shift from an adjacent
// date running into it, or if taking the slot would breach the rest period
// relative to their most recent prior shift end. Otherwise the score is a
// workload-leveling heuristic: five points per existing shift, so lightly
// loaded members rank first.
func ScoreCandidate(candidate model.StaffMember, slot OpenSlot, allShifts []model.ShiftAssignment, constraints model.Constraints) float64 {
	slotStart, slotEnd, err := shifttime.AbsoluteRange(slot.Date, slot.StartTime, slot.EndTime)
	if err != nil {
		return IneligibleScore
	}

	shiftCount := 0
	lastEnd := make(map[string]time.Time)

	for _, shift := range allShifts {
		if shift.StaffID != candidate.ID {
			continue
		}
		shiftCount++

		start, end, err := shifttime.AbsoluteRange(shift.Date, shift.StartTime, shift.EndTime)
		if err != nil {
			continue
		}
		if start.Before(slotEnd) && slotStart.Before(end) {
			// Double-booking: hard block
			return IneligibleScore
		}

		// Most recent shift end before the slot starts
		if end.After(slotStart) {
			continue
		}
		if current, ok := lastEnd[candidate.ID]; !ok || end.After(current) {
			lastEnd[candidate.ID] = end
		}
	}

	if !roster.CheckRestSafety(candidate.ID, slotStart, lastEnd, constraints).Allowed {
		return IneligibleScore
	}

	return float64(shiftCount * workloadWeight)
}

// SelectCandidates returns the members of the pool who can safely take the
// slot, most suitable first. Ineligible candidates are filtered out entirely.
// The sort is stable, so candidates with equal scores keep their pool order.
func SelectCandidates(slot OpenSlot, pool []model.StaffMember, constraints model.Constraints, allShifts []model.ShiftAssignment) []model.StaffMember {
	type scored struct {
		member model.StaffMember
		score  float64
	}

	var eligible []scored
	for _, member := range pool {
		score := ScoreCandidate(member, slot, allShifts, constraints)
		if score >= IneligibleScore {
			continue
		}
		eligible = append(eligible, scored{member: member, score: score})
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].score < eligible[j].score
	})

	ranked := make([]model.StaffMember, len(eligible))
	for i, e := range eligible {
		ranked[i] = e.member
	}
	return ranked
}
