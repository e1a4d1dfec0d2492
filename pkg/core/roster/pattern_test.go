package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jrowledge/staff-rota/pkg/core/model"
)

func TestPatternSequence_Validate(t *testing.T) {
	assert.Error(t, PatternSequence{}.Validate(), "empty pattern must be rejected")
	assert.Error(t, PatternSequence{model.ShiftEarly, "X"}.Validate(), "unknown code must be rejected")
	assert.NoError(t, PatternSequence{model.ShiftEarly, model.ShiftRest}.Validate())
}

func TestPatternSequence_CodeAt(t *testing.T) {
	pattern := PatternSequence{model.ShiftEarly, model.ShiftLate, model.ShiftNight, model.ShiftRest}

	assert.Equal(t, model.ShiftEarly, pattern.CodeAt(0, 0))
	assert.Equal(t, model.ShiftLate, pattern.CodeAt(0, 1), "initial offset staggers the cycle")
	assert.Equal(t, model.ShiftEarly, pattern.CodeAt(4, 0), "cycle repeats after its length")
	assert.Equal(t, model.ShiftRest, pattern.CodeAt(2, 5))
}

func TestPatternSequence_WorkingCodes(t *testing.T) {
	pattern := PatternSequence{
		model.ShiftEarly, model.ShiftEarly, model.ShiftLate,
		model.ShiftRest, model.ShiftNight, model.ShiftLate,
	}

	assert.Equal(t,
		[]model.ShiftCode{model.ShiftEarly, model.ShiftLate, model.ShiftNight},
		pattern.WorkingCodes(),
		"distinct non-rest codes in first-appearance order")
}
