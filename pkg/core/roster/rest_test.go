package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jrowledge/staff-rota/pkg/core/model"
)

func TestCheckRestSafety_NoHistoryAlwaysAllowed(t *testing.T) {
	start := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

	check := CheckRestSafety("s1", start, map[string]time.Time{}, model.Constraints{})

	assert.True(t, check.Allowed)
	assert.Empty(t, check.Reason)
}

func TestCheckRestSafety_SufficientGap(t *testing.T) {
	lastEnd := map[string]time.Time{
		"s1": time.Date(2025, 3, 9, 14, 0, 0, 0, time.UTC),
	}
	start := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC) // 16h gap

	check := CheckRestSafety("s1", start, lastEnd, model.Constraints{})

	assert.True(t, check.Allowed)
}

func TestCheckRestSafety_InsufficientGap(t *testing.T) {
	lastEnd := map[string]time.Time{
		"s1": time.Date(2025, 3, 9, 22, 0, 0, 0, time.UTC),
	}
	start := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC) // 8h gap

	check := CheckRestSafety("s1", start, lastEnd, model.Constraints{})

	assert.False(t, check.Allowed)
	assert.Equal(t, "Insufficient rest (8.0h < 11h)", check.Reason)
}

func TestCheckRestSafety_CustomRestPeriod(t *testing.T) {
	lastEnd := map[string]time.Time{
		"s1": time.Date(2025, 3, 9, 22, 0, 0, 0, time.UTC),
	}
	start := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

	check := CheckRestSafety("s1", start, lastEnd, model.Constraints{RestPeriodHours: 8})

	assert.True(t, check.Allowed, "an 8h gap satisfies an 8h rest period")
}

func TestCheckRestSafety_OtherStaffHistoryIgnored(t *testing.T) {
	lastEnd := map[string]time.Time{
		"s2": time.Date(2025, 3, 10, 5, 0, 0, 0, time.UTC),
	}
	start := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)

	check := CheckRestSafety("s1", start, lastEnd, model.Constraints{})

	assert.True(t, check.Allowed)
}
