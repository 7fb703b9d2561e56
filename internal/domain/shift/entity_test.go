package shift

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekdaysActiveOn(t *testing.T) {
	// Bit 0 is Monday.
	weekdays := Weekdays(0x1F) // Monday through Friday

	assert.True(t, weekdays.ActiveOn(time.Monday))
	assert.True(t, weekdays.ActiveOn(time.Friday))
	assert.False(t, weekdays.ActiveOn(time.Saturday))
	assert.False(t, weekdays.ActiveOn(time.Sunday))

	weekend := Weekdays(0x60)
	assert.True(t, weekend.ActiveOn(time.Saturday))
	assert.True(t, weekend.ActiveOn(time.Sunday))
	assert.False(t, weekend.ActiveOn(time.Wednesday))
}

func TestDefinitionStartEndOn(t *testing.T) {
	d := Definition{StartTime: "09:00", EndTime: "17:30"}
	day := date(2026, 3, 10)

	start, err := d.StartOn(day, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), start)

	end, err := d.EndOn(day, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 17, 30, 0, 0, time.UTC), end)
}

func TestDefinitionNightShiftEndsNextDay(t *testing.T) {
	d := Definition{StartTime: "22:00", EndTime: "06:00"}
	day := date(2026, 3, 10)

	end, err := d.EndOn(day, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 11, 6, 0, 0, 0, time.UTC), end)
}

func TestDefinitionInvalidTime(t *testing.T) {
	d := Definition{StartTime: "25:99"}
	_, err := d.StartOn(date(2026, 3, 10), time.UTC)
	assert.Error(t, err)
}

func TestAssignmentCoversDate(t *testing.T) {
	end := date(2026, 6, 30)
	a := Assignment{
		EffectiveStart: date(2026, 1, 1),
		EffectiveEnd:   &end,
	}

	assert.True(t, a.CoversDate(date(2026, 1, 1)))
	assert.True(t, a.CoversDate(date(2026, 6, 30)))
	assert.True(t, a.CoversDate(date(2026, 3, 15)))
	assert.False(t, a.CoversDate(date(2025, 12, 31)))
	assert.False(t, a.CoversDate(date(2026, 7, 1)))
}

func TestAssignmentCoversDateOpenEnded(t *testing.T) {
	a := Assignment{EffectiveStart: date(2026, 1, 1)}

	assert.True(t, a.CoversDate(date(2030, 1, 1)))
	assert.False(t, a.CoversDate(date(2025, 12, 31)))
}

func TestRotationWeek(t *testing.T) {
	// Anchor on a Monday with a 3-week cycle.
	anchor := date(2026, 1, 5)
	a := Assignment{
		EffectiveStart:   anchor,
		Rotating:         true,
		CycleLengthWeeks: 3,
	}

	assert.Equal(t, 0, a.RotationWeek(anchor))
	assert.Equal(t, 0, a.RotationWeek(date(2026, 1, 11))) // day 6
	assert.Equal(t, 1, a.RotationWeek(date(2026, 1, 12))) // day 7
	assert.Equal(t, 2, a.RotationWeek(date(2026, 1, 19)))
	assert.Equal(t, 0, a.RotationWeek(date(2026, 1, 26))) // cycle wraps
}

func TestRotationWeekExplicitAnchor(t *testing.T) {
	anchor := date(2026, 1, 5)
	a := Assignment{
		EffectiveStart:   date(2026, 2, 1),
		Rotating:         true,
		RotationAnchor:   &anchor,
		CycleLengthWeeks: 2,
	}

	assert.Equal(t, 0, a.RotationWeek(date(2026, 1, 5)))
	assert.Equal(t, 1, a.RotationWeek(date(2026, 1, 12)))
	assert.Equal(t, 0, a.RotationWeek(date(2026, 1, 19)))
}

func TestRotationWeekNonRotating(t *testing.T) {
	a := Assignment{EffectiveStart: date(2026, 1, 5), CycleLengthWeeks: 4}
	assert.Equal(t, 0, a.RotationWeek(date(2026, 3, 1)))
}

func TestRotationWeekBeforeAnchor(t *testing.T) {
	a := Assignment{
		EffectiveStart:   date(2026, 1, 5),
		Rotating:         true,
		CycleLengthWeeks: 3,
	}
	assert.Equal(t, 0, a.RotationWeek(date(2025, 12, 1)))
}
