package roster

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrowledge/staff-rota/pkg/core/model"
	"github.com/jrowledge/staff-rota/pkg/core/shifttime"
)

// monday is a known Monday used as the generation start throughout
var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func staffList(ids ...string) []model.StaffMember {
	staff := make([]model.StaffMember, len(ids))
	for i, id := range ids {
		staff[i] = model.StaffMember{ID: id, Name: "Member " + id}
	}
	return staff
}

func TestGenerate_EmptyPatternRejected(t *testing.T) {
	_, err := Generate(GenerationConfig{
		StartDate: monday,
		NumWeeks:  1,
		Staff:     staffList("s1"),
		Pattern:   PatternSequence{},
	})

	assert.Error(t, err)
}

func TestGenerate_EmptyStaffRejected(t *testing.T) {
	_, err := Generate(GenerationConfig{
		StartDate: monday,
		NumWeeks:  1,
		Staff:     nil,
		Pattern:   PatternSequence{model.ShiftEarly},
	})

	assert.Error(t, err)
}

func TestGenerate_WeekdayEarlyPattern(t *testing.T) {
	// Five early shifts then two rest days, one member, two weeks:
	// exactly ten early assignments and no shortfalls
	outcome, err := Generate(GenerationConfig{
		StartDate: monday,
		NumWeeks:  2,
		Staff:     staffList("s1"),
		Pattern: PatternSequence{
			model.ShiftEarly, model.ShiftEarly, model.ShiftEarly,
			model.ShiftEarly, model.ShiftEarly, model.ShiftRest, model.ShiftRest,
		},
		Requirements: map[model.ShiftCode]int{model.ShiftEarly: 1},
	})
	require.NoError(t, err)

	assert.Len(t, outcome.Assignments, 10)
	assert.Empty(t, outcome.Shortfalls)
	for _, assignment := range outcome.Assignments {
		assert.Equal(t, model.ShiftEarly, assignment.Code)
		assert.Equal(t, "s1", assignment.StaffID)
		assert.False(t, assignment.IsForced)
		assert.Equal(t, "06:00", assignment.StartTime)
		assert.Equal(t, "14:00", assignment.EndTime)
	}
}

func TestGenerate_NoSafeCandidatesRecordsShortfall(t *testing.T) {
	// The member's only shift ends at noon on the first generation day, so
	// the 22:00 night start leaves a 10h gap. Generation must complete
	// without error and report the unfilled night slot.
	outcome, err := Generate(GenerationConfig{
		StartDate:    monday,
		NumWeeks:     1,
		Staff:        staffList("s1"),
		Pattern:      PatternSequence{model.ShiftNight},
		Requirements: map[model.ShiftCode]int{model.ShiftNight: 1},
		ExistingShifts: []model.ShiftAssignment{
			{ID: "m1", Date: "2025-03-09", StartTime: "13:00", EndTime: "12:00", Code: model.ShiftLongDay, StaffID: "s1"},
		},
	})
	require.NoError(t, err)

	day0 := monday.Format(shifttime.DateLayout)
	for _, assignment := range outcome.Assignments {
		assert.NotEqual(t, day0, assignment.Date, "first day cannot be safely staffed")
	}

	var pass1, pass2 int
	for _, shortfall := range outcome.Shortfalls {
		if shortfall.Date != day0 {
			continue
		}
		switch shortfall.StaffID {
		case "s1":
			pass1++
			assert.Contains(t, shortfall.Reason, "Insufficient rest")
		case model.ShortfallAllCandidates:
			pass2++
			assert.Equal(t, "No safe candidates available", shortfall.Reason)
		}
		assert.Equal(t, model.ShiftNight, shortfall.Code)
	}
	assert.Equal(t, 1, pass1, "rotation pass records the rest rejection")
	assert.Equal(t, 1, pass2, "gap-fill pass records the exhausted pool")
}

func TestGenerate_ManualShiftsTakePrecedence(t *testing.T) {
	manual := model.ShiftAssignment{
		ID:        "m1",
		Date:      monday.Format(shifttime.DateLayout),
		StartTime: "06:00",
		EndTime:   "14:00",
		Code:      model.ShiftEarly,
		StaffID:   "s1",
	}

	outcome, err := Generate(GenerationConfig{
		StartDate:      monday,
		NumWeeks:       1,
		Staff:          staffList("s1"),
		Pattern:        PatternSequence{model.ShiftEarly},
		Requirements:   map[model.ShiftCode]int{model.ShiftEarly: 1},
		ExistingShifts: []model.ShiftAssignment{manual},
	})
	require.NoError(t, err)

	assert.Len(t, outcome.Assignments, 6, "the manual entry covers the first day")
	assert.Empty(t, outcome.Shortfalls, "the manual entry counts toward coverage")
	for _, assignment := range outcome.Assignments {
		assert.NotEqual(t, manual.Date, assignment.Date)
	}
}

func TestGenerate_FutureManualShiftDoesNotBlockEarlierDays(t *testing.T) {
	// A manual shift in the middle of the window only constrains days from
	// its date onward; the days before it have no rest history yet
	manualDate := monday.AddDate(0, 0, 4).Format(shifttime.DateLayout)

	outcome, err := Generate(GenerationConfig{
		StartDate:    monday,
		NumWeeks:     1,
		Staff:        staffList("s1"),
		Pattern:      PatternSequence{model.ShiftEarly},
		Requirements: map[model.ShiftCode]int{model.ShiftEarly: 1},
		ExistingShifts: []model.ShiftAssignment{
			{ID: "m1", Date: manualDate, StartTime: "06:00", EndTime: "14:00", Code: model.ShiftEarly, StaffID: "s1"},
		},
	})
	require.NoError(t, err)

	assert.Len(t, outcome.Assignments, 6, "every day except the manual one is generated")
	assert.Empty(t, outcome.Shortfalls)
	for _, assignment := range outcome.Assignments {
		assert.NotEqual(t, manualDate, assignment.Date)
		assert.False(t, assignment.IsForced)
	}
}

func TestGenerate_RestingPatternDayNeedsNoCover(t *testing.T) {
	// On a day every member's pattern position rests a code, the base
	// requirement for that code is zero rather than a gap to fill
	outcome, err := Generate(GenerationConfig{
		StartDate:    monday,
		NumWeeks:     1,
		Staff:        staffList("s1", "s2"),
		Pattern:      PatternSequence{model.ShiftEarly, model.ShiftEarly, model.ShiftRest, model.ShiftRest},
		Requirements: map[model.ShiftCode]int{model.ShiftEarly: 1},
		InitialOffsets: map[string]int{
			"s1": 0,
			"s2": 0,
		},
	})
	require.NoError(t, err)

	assert.Empty(t, outcome.Shortfalls)
	for _, assignment := range outcome.Assignments {
		assert.False(t, assignment.IsForced, "rest days must not be gap-filled on %s", assignment.Date)
	}
}

func TestGenerate_CoverageNeverOverfilled(t *testing.T) {
	outcome, err := Generate(GenerationConfig{
		StartDate: monday,
		NumWeeks:  2,
		Staff:     staffList("s1", "s2", "s3", "s4", "s5"),
		Pattern: PatternSequence{
			model.ShiftEarly, model.ShiftLate, model.ShiftNight, model.ShiftRest,
		},
		Requirements: map[model.ShiftCode]int{
			model.ShiftEarly: 1,
			model.ShiftLate:  1,
			model.ShiftNight: 1,
		},
	})
	require.NoError(t, err)

	perDayCode := make(map[string]int)
	for _, assignment := range outcome.Assignments {
		perDayCode[assignment.Date+"/"+string(assignment.Code)]++
	}
	for key, count := range perDayCode {
		assert.LessOrEqual(t, count, 1, "over-filled %s", key)
	}
}

func TestGenerate_NoDoubleBooking(t *testing.T) {
	outcome, err := Generate(GenerationConfig{
		StartDate: monday,
		NumWeeks:  4,
		Staff:     staffList("s1", "s2", "s3", "s4"),
		Pattern: PatternSequence{
			model.ShiftEarly, model.ShiftEarly, model.ShiftLate, model.ShiftNight, model.ShiftRest,
		},
		Requirements: map[model.ShiftCode]int{
			model.ShiftEarly: 2,
			model.ShiftLate:  1,
			model.ShiftNight: 1,
		},
	})
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, assignment := range outcome.Assignments {
		key := assignment.StaffID + "/" + assignment.Date
		assert.False(t, seen[key], "double booking: %s", key)
		seen[key] = true
	}
}

func TestGenerate_RestSafetyHoldsForNaturalAssignments(t *testing.T) {
	outcome, err := Generate(GenerationConfig{
		StartDate: monday,
		NumWeeks:  3,
		Staff:     staffList("s1", "s2", "s3"),
		Pattern: PatternSequence{
			model.ShiftNight, model.ShiftEarly, model.ShiftRest,
		},
		Requirements: map[model.ShiftCode]int{
			model.ShiftNight: 1,
			model.ShiftEarly: 1,
		},
	})
	require.NoError(t, err)

	lastEnd := make(map[string]time.Time)
	for _, assignment := range outcome.Assignments {
		start, end, err := shifttime.AbsoluteRange(assignment.Date, assignment.StartTime, assignment.EndTime)
		require.NoError(t, err)

		if prev, ok := lastEnd[assignment.StaffID]; ok && !assignment.IsForced {
			gap := shifttime.GapHours(prev, start)
			assert.GreaterOrEqual(t, gap, model.DefaultRestPeriodHours,
				"non-forced assignment for %s on %s breaks rest", assignment.StaffID, assignment.Date)
		}
		if end.After(lastEnd[assignment.StaffID]) {
			lastEnd[assignment.StaffID] = end
		}
	}
}

func TestGenerate_GapFillPrefersLeastForced(t *testing.T) {
	// One early slot per day needs two members, but rotation only ever
	// yields one; the gap fill must rotate the burden rather than lean on
	// the same member every day
	outcome, err := Generate(GenerationConfig{
		StartDate:    monday,
		NumWeeks:     1,
		Staff:        staffList("s1", "s2", "s3"),
		Pattern:      PatternSequence{model.ShiftEarly, model.ShiftRest, model.ShiftRest},
		Requirements: map[model.ShiftCode]int{model.ShiftEarly: 2},
	})
	require.NoError(t, err)

	var forcedOrder []string
	for _, assignment := range outcome.Assignments {
		if assignment.IsForced {
			assert.Equal(t, "Gap Fill", assignment.ForcedReason)
			forcedOrder = append(forcedOrder, assignment.StaffID)
		} else {
			assert.Empty(t, assignment.ForcedReason)
		}
	}

	require.GreaterOrEqual(t, len(forcedOrder), 3)
	// Day 1: s1 rotates on, s2 and s3 are fresh; s2 wins on roster order.
	// Day 2: s3 rotates on; s1 (no forced yet) beats s2 (one forced).
	// Day 3: s2 rotates on; s3 (no forced yet) beats s1 (one forced).
	assert.Equal(t, []string{"s2", "s1", "s3"}, forcedOrder[:3])
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := GenerationConfig{
		StartDate: monday,
		NumWeeks:  2,
		Staff:     staffList("s1", "s2", "s3", "s4"),
		Pattern: PatternSequence{
			model.ShiftEarly, model.ShiftLate, model.ShiftNight, model.ShiftRest,
		},
		Requirements: map[model.ShiftCode]int{
			model.ShiftEarly: 2,
			model.ShiftLate:  1,
			model.ShiftNight: 1,
		},
	}

	first, err := Generate(cfg)
	require.NoError(t, err)
	second, err := Generate(cfg)
	require.NoError(t, err)

	require.Equal(t, len(first.Assignments), len(second.Assignments))
	for i := range first.Assignments {
		a, b := first.Assignments[i], second.Assignments[i]
		key := func(s model.ShiftAssignment) string {
			return fmt.Sprintf("%s/%s/%s/%v", s.Date, s.StaffID, s.Code, s.IsForced)
		}
		assert.Equal(t, key(a), key(b), "assignment %d differs between runs", i)
	}
	assert.Equal(t, first.Shortfalls, second.Shortfalls)
}

func TestGenerate_ForcedReasonSetIffForced(t *testing.T) {
	outcome, err := Generate(GenerationConfig{
		StartDate:    monday,
		NumWeeks:     2,
		Staff:        staffList("s1", "s2"),
		Pattern:      PatternSequence{model.ShiftLongDay, model.ShiftRest},
		Requirements: map[model.ShiftCode]int{model.ShiftLongDay: 2},
	})
	require.NoError(t, err)

	for _, assignment := range outcome.Assignments {
		assert.Equal(t, assignment.IsForced, assignment.ForcedReason != "",
			"forced reason must be set exactly when forced")
	}
}

func TestGenerate_DailyRequirementOverride(t *testing.T) {
	day0 := monday.Format(shifttime.DateLayout)

	outcome, err := Generate(GenerationConfig{
		StartDate:    monday,
		NumWeeks:     1,
		Staff:        staffList("s1", "s2"),
		Pattern:      PatternSequence{model.ShiftEarly, model.ShiftEarly},
		Requirements: map[model.ShiftCode]int{model.ShiftEarly: 2},
		DailyRequirements: map[string]map[model.ShiftCode]int{
			day0: {model.ShiftEarly: 1},
		},
	})
	require.NoError(t, err)

	perDay := make(map[string]int)
	for _, assignment := range outcome.Assignments {
		perDay[assignment.Date]++
	}
	assert.Equal(t, 1, perDay[day0], "override lowers the first day's requirement")
	assert.Equal(t, 2, perDay[monday.AddDate(0, 0, 1).Format(shifttime.DateLayout)])
}

func TestGenerate_CustomShiftTimes(t *testing.T) {
	outcome, err := Generate(GenerationConfig{
		StartDate:    monday,
		NumWeeks:     1,
		Staff:        staffList("s1"),
		Pattern:      PatternSequence{model.ShiftEarly},
		Requirements: map[model.ShiftCode]int{model.ShiftEarly: 1},
		ShiftTimes: model.ShiftTimeStandards{
			model.ShiftEarly: {Start: "05:30", End: "13:30"},
		},
	})
	require.NoError(t, err)

	require.NotEmpty(t, outcome.Assignments)
	for _, assignment := range outcome.Assignments {
		assert.Equal(t, "05:30", assignment.StartTime)
		assert.Equal(t, "13:30", assignment.EndTime)
	}
}
