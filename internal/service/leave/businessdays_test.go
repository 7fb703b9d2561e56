package leave

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBusinessDaysFullWeek(t *testing.T) {
	// Monday through Sunday contains five weekdays.
	got := BusinessDays(day(2026, 3, 9), day(2026, 3, 15), nil)
	assert.Equal(t, 5, got)
}

func TestBusinessDaysSingleDay(t *testing.T) {
	assert.Equal(t, 1, BusinessDays(day(2026, 3, 10), day(2026, 3, 10), nil))
	assert.Equal(t, 0, BusinessDays(day(2026, 3, 14), day(2026, 3, 14), nil)) // Saturday
}

func TestBusinessDaysSkipsHolidays(t *testing.T) {
	holidays := []time.Time{
		day(2026, 3, 11), // Wednesday
		day(2026, 3, 14), // Saturday, already skipped
	}
	got := BusinessDays(day(2026, 3, 9), day(2026, 3, 15), holidays)
	assert.Equal(t, 4, got)
}

func TestBusinessDaysInvertedRange(t *testing.T) {
	assert.Equal(t, 0, BusinessDays(day(2026, 3, 15), day(2026, 3, 9), nil))
}

func TestBusinessDaysAcrossWeeks(t *testing.T) {
	// Two full weeks.
	got := BusinessDays(day(2026, 3, 9), day(2026, 3, 22), nil)
	assert.Equal(t, 10, got)
}
