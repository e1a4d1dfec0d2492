package roster

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jrowledge/staff-rota/pkg/core/model"
	"github.com/jrowledge/staff-rota/pkg/core/shifttime"
)

// GenerationConfig contains the inputs for one roster generation run
type GenerationConfig struct {
	// StartDate is the first day of the generation window
	StartDate time.Time

	// NumWeeks is the length of the window in whole weeks
	NumWeeks int

	// Requirements maps each shift code to its required daily headcount.
	// Codes absent from the map default to zero.
	Requirements map[model.ShiftCode]int

	// DailyRequirements optionally overrides Requirements for specific dates
	// (keyed "2006-01-02"). Dates absent from the map use Requirements.
	DailyRequirements map[string]map[model.ShiftCode]int

	// Staff is the roster, in roster order. Order matters: it fixes the
	// default initial offsets and the final gap-fill tie-break.
	Staff []model.StaffMember

	// Constraints are the generation rules (rest period)
	Constraints model.Constraints

	// ExistingShifts are manually entered shifts already on the roster.
	// They take precedence over pattern assignment and count toward coverage.
	ExistingShifts []model.ShiftAssignment

	// Pattern is the repeating shift-code cycle
	Pattern PatternSequence

	// InitialOffsets overrides each member's starting position in the cycle.
	// Members absent from the map default to their roster index, giving a
	// staggered rotation.
	InitialOffsets map[string]int

	// ShiftTimes resolves shift codes to clock times. Codes it does not
	// define fall back to the global standards.
	ShiftTimes model.ShiftTimeStandards

	// VersionID tags every generated assignment with the roster version
	VersionID string
}

// GenerationOutcome is the result of a generation run. Shortfalls are not
// errors: a run that could not fill every slot still completes and reports
// what it could not do.
type GenerationOutcome struct {
	Assignments []model.ShiftAssignment
	Shortfalls  []model.Shortfall
}

// Generate produces day-by-day shift assignments over the configured window.
//
// Each day runs two passes. Pass one walks the roster in order and assigns
// each member the shift their pattern position calls for, provided the
// rest-safety check passes and the day's quota for that code is not already
// met. Pass two fills any remaining coverage gaps from the day's unassigned
// pool, preferring members with the fewest forced and night assignments so
// the burden of gap filling is spread fairly.
//
// Configuration mistakes (empty pattern, empty staff list, a working code
// with no resolvable shift times) fail fast with an error. Coverage
// shortfalls are returned as data in the outcome.
func Generate(cfg GenerationConfig) (*GenerationOutcome, error) {
	if err := cfg.Pattern.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation config: %w", err)
	}
	if len(cfg.Staff) == 0 {
		return nil, fmt.Errorf("invalid generation config: staff list is empty")
	}
	if cfg.NumWeeks <= 0 {
		return nil, fmt.Errorf("invalid generation config: number of weeks must be positive, got %d", cfg.NumWeeks)
	}

	codes := cfg.Pattern.WorkingCodes()

	// Resolve clock times for every working code up front so a bad
	// configuration fails before any assignment is made
	times := make(map[model.ShiftCode]shifttime.Interval, len(codes))
	clocks := make(map[model.ShiftCode]model.ShiftTimes, len(codes))
	defaults := model.DefaultShiftTimeStandards()
	for _, code := range codes {
		def, ok := cfg.ShiftTimes[code]
		if !ok {
			def, ok = defaults[code]
		}
		if !ok {
			return nil, fmt.Errorf("invalid generation config: no shift times for code %q", code)
		}
		iv, err := shifttime.NewInterval(def.Start, def.End)
		if err != nil {
			return nil, fmt.Errorf("invalid generation config: shift times for code %q: %w", code, err)
		}
		times[code] = iv
		clocks[code] = def
	}

	state := newGenerationState(cfg.Staff, cfg.ExistingShifts, cfg.StartDate)

	existingByDate := make(map[string][]model.ShiftAssignment)
	for _, shift := range cfg.ExistingShifts {
		existingByDate[shift.Date] = append(existingByDate[shift.Date], shift)
	}

	outcome := &GenerationOutcome{
		Assignments: []model.ShiftAssignment{},
		Shortfalls:  []model.Shortfall{},
	}

	totalDays := cfg.NumWeeks * 7
	for dayOffset := 0; dayOffset < totalDays; dayOffset++ {
		day := cfg.StartDate.AddDate(0, 0, dayOffset)
		date := day.Format(shifttime.DateLayout)

		// A code only needs covering on days where some member's pattern
		// position yields it; on a day the whole rotation rests a code, its
		// requirement is zero
		active := make(map[model.ShiftCode]bool, len(codes))
		for i, member := range cfg.Staff {
			offset, ok := cfg.InitialOffsets[member.ID]
			if !ok {
				offset = i
			}
			if code := cfg.Pattern.CodeAt(dayOffset, offset); !code.IsRest() {
				active[code] = true
			}
		}

		required := cfg.dayRequirements(date, codes, active)

		// Manual entries take precedence: they count toward coverage, their
		// owners are skipped by pattern assignment, and their shift ends
		// constrain the rest checks from this day on. Each shift counts
		// against its own code only.
		counts := make(map[model.ShiftCode]int, len(codes))
		manual := make(map[string]bool)
		for _, shift := range existingByDate[date] {
			manual[shift.StaffID] = true
			if _, tracked := required[shift.Code]; tracked {
				counts[shift.Code]++
			}
			if _, end, err := shifttime.AbsoluteRange(shift.Date, shift.StartTime, shift.EndTime); err == nil {
				state.noteShiftEnd(shift.StaffID, end)
			}
		}

		var pool []model.StaffMember

		// Pass 1: natural rotation
		for i, member := range cfg.Staff {
			if manual[member.ID] {
				continue
			}

			offset, ok := cfg.InitialOffsets[member.ID]
			if !ok {
				offset = i
			}
			code := cfg.Pattern.CodeAt(dayOffset, offset)

			if code.IsRest() {
				pool = append(pool, member)
				continue
			}

			shiftStart, err := shifttime.At(date, times[code].Start)
			if err != nil {
				return nil, err
			}

			check := CheckRestSafety(member.ID, shiftStart, state.LastShiftEnd, cfg.Constraints)
			if check.Allowed && counts[code] < required[code] {
				assignment := cfg.newAssignment(date, code, clocks[code], member.ID, false, "")
				outcome.Assignments = append(outcome.Assignments, assignment)
				counts[code]++

				end, err := shifttime.At(date, times[code].End)
				if err != nil {
					return nil, err
				}
				state.recordCommit(member.ID, code, end, false)
				continue
			}

			pool = append(pool, member)
			if !check.Allowed {
				outcome.Shortfalls = append(outcome.Shortfalls, model.Shortfall{
					Date:    date,
					StaffID: member.ID,
					Code:    code,
					Reason:  check.Reason,
				})
			}
		}

		// Pass 2: gap filling
		for _, code := range codes {
			for counts[code] < required[code] {
				candidates := safeCandidates(pool, date, times[code], state, cfg.Constraints)
				if len(candidates) == 0 {
					outcome.Shortfalls = append(outcome.Shortfalls, model.Shortfall{
						Date:    date,
						StaffID: model.ShortfallAllCandidates,
						Code:    code,
						Reason:  "No safe candidates available",
					})
					break
				}

				// Fairness tie-break: fewest forced assignments first, then
				// fewest night assignments, then original roster order
				sort.Slice(candidates, func(a, b int) bool {
					ca, cb := candidates[a].ID, candidates[b].ID
					if state.ForcedCount[ca] != state.ForcedCount[cb] {
						return state.ForcedCount[ca] < state.ForcedCount[cb]
					}
					if state.NightCount[ca] != state.NightCount[cb] {
						return state.NightCount[ca] < state.NightCount[cb]
					}
					return state.RosterIndex[ca] < state.RosterIndex[cb]
				})

				chosen := candidates[0]
				assignment := cfg.newAssignment(date, code, clocks[code], chosen.ID, true, "Gap Fill")
				outcome.Assignments = append(outcome.Assignments, assignment)
				counts[code]++

				end, err := shifttime.At(date, times[code].End)
				if err != nil {
					return nil, err
				}
				state.recordCommit(chosen.ID, code, end, true)

				pool = removeFromPool(pool, chosen.ID)
			}
		}
	}

	return outcome, nil
}

// dayRequirements resolves the headcount required per working code on a date.
// The base requirements apply only to codes the rotation yields that day; a
// per-date override is an explicit statement about that date and is taken
// as given.
func (cfg GenerationConfig) dayRequirements(date string, codes []model.ShiftCode, active map[model.ShiftCode]bool) map[model.ShiftCode]int {
	required := make(map[model.ShiftCode]int, len(codes))

	if override, ok := cfg.DailyRequirements[date]; ok {
		for _, code := range codes {
			required[code] = override[code]
		}
		return required
	}

	for _, code := range codes {
		if active[code] {
			required[code] = cfg.Requirements[code]
		}
	}
	return required
}

func (cfg GenerationConfig) newAssignment(date string, code model.ShiftCode, clock model.ShiftTimes, staffID string, forced bool, reason string) model.ShiftAssignment {
	return model.ShiftAssignment{
		ID:           uuid.New().String(),
		VersionID:    cfg.VersionID,
		Date:         date,
		StartTime:    clock.Start,
		EndTime:      clock.End,
		Code:         code,
		StaffID:      staffID,
		IsForced:     forced,
		ForcedReason: reason,
	}
}

// safeCandidates returns the pool members that pass the rest-safety check for
// a candidate shift with the given interval on the given date
func safeCandidates(pool []model.StaffMember, date string, iv shifttime.Interval, state *GenerationState, constraints model.Constraints) []model.StaffMember {
	var safe []model.StaffMember
	for _, member := range pool {
		shiftStart, err := shifttime.At(date, iv.Start)
		if err != nil {
			continue
		}
		if CheckRestSafety(member.ID, shiftStart, state.LastShiftEnd, constraints).Allowed {
			safe = append(safe, member)
		}
	}
	return safe
}

func removeFromPool(pool []model.StaffMember, staffID string) []model.StaffMember {
	for i, member := range pool {
		if member.ID == staffID {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}
