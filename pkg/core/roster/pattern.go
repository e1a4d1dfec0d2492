package roster

import (
	"fmt"

	"github.com/jrowledge/staff-rota/pkg/core/model"
)

// PatternSequence is the repeating cycle of shift codes (or rest markers) that
// drives the natural rotation. Each staff member walks the same cycle offset
// by their initial offset, so a staggered roster covers every position.
type PatternSequence []model.ShiftCode

// CycleLength returns the number of days in one repetition of the pattern
func (p PatternSequence) CycleLength() int {
	return len(p)
}

// Validate checks the pattern is usable for generation
func (p PatternSequence) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("pattern sequence is empty")
	}
	for i, code := range p {
		if !code.IsValid() {
			return fmt.Errorf("pattern sequence position %d has unknown shift code %q", i, code)
		}
	}
	return nil
}

// CodeAt returns the shift code for a staff member on the given day offset,
// given their initial offset into the cycle
func (p PatternSequence) CodeAt(dayOffset, initialOffset int) model.ShiftCode {
	idx := (dayOffset + initialOffset) % len(p)
	if idx < 0 {
		idx += len(p)
	}
	return p[idx]
}

// WorkingCodes returns the distinct non-rest codes in the pattern, in order of
// first appearance. This fixes the iteration order for requirement resolution
// and gap filling, which keeps generation deterministic.
func (p PatternSequence) WorkingCodes() []model.ShiftCode {
	seen := make(map[model.ShiftCode]bool)
	var codes []model.ShiftCode
	for _, code := range p {
		if code.IsRest() || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}
