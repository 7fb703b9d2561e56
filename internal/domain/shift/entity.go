package shift

import (
	"fmt"
	"time"
)

// Definition is a named work-time template. Definitions are immutable
// once referenced by history; policy changes create new records.
type Definition struct {
	ID                   string
	CompanyID            string
	Name                 string
	StartTime            string // "15:04" local time-of-day
	EndTime              string
	Weekdays             Weekdays
	ToleranceMinutes     int
	ExpectedDailyMinutes int
	RequiresGPS          bool
	RequiresPhoto        bool
	CreatedAt            time.Time
}

// StartOn anchors the shift's start time-of-day on the given calendar
// date in the given location.
func (d Definition) StartOn(date time.Time, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", d.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid shift start time %q: %w", d.StartTime, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// EndOn anchors the shift's end time-of-day on the given calendar date.
// An end before the start means a night shift closing on the next day.
func (d Definition) EndOn(date time.Time, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", d.EndTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid shift end time %q: %w", d.EndTime, err)
	}
	end := time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc)
	start, err := d.StartOn(date, loc)
	if err != nil {
		return time.Time{}, err
	}
	if end.Before(start) {
		end = end.Add(24 * time.Hour)
	}
	return end, nil
}

// Weekdays is a 7-bit set of active weekdays, bit 0 = Monday.
type Weekdays uint8

func (w Weekdays) ActiveOn(day time.Weekday) bool {
	// time.Weekday has Sunday = 0; shift weeks start on Monday.
	idx := (int(day) + 6) % 7
	return w&(1<<idx) != 0
}

// Assignment binds an employee to a shift definition for a date range.
// At most one active assignment may cover any given date.
type Assignment struct {
	ID               string
	CompanyID        string
	EmployeeID       string
	ShiftID          string
	EffectiveStart   time.Time
	EffectiveEnd     *time.Time // nil = open-ended
	Rotating         bool
	RotationAnchor   *time.Time // defaults to EffectiveStart
	CycleLengthWeeks int
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CoversDate reports whether the assignment's effective range contains
// the calendar date.
func (a Assignment) CoversDate(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	if d.Before(a.EffectiveStart.Truncate(24 * time.Hour)) {
		return false
	}
	if a.EffectiveEnd != nil && d.After(a.EffectiveEnd.Truncate(24*time.Hour)) {
		return false
	}
	return true
}

// RotationWeek returns which week of the rotation cycle applies on the
// given date: a pure function of (anchor, cycle length, date), so no
// calendar needs to be materialized. Non-rotating assignments are
// always week 0.
func (a Assignment) RotationWeek(date time.Time) int {
	if !a.Rotating || a.CycleLengthWeeks <= 1 {
		return 0
	}
	anchor := a.EffectiveStart
	if a.RotationAnchor != nil {
		anchor = *a.RotationAnchor
	}
	days := int(date.Truncate(24*time.Hour).Sub(anchor.Truncate(24*time.Hour)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return (days / 7) % a.CycleLengthWeeks
}

// Resolved is the output of shift resolution: the single active
// assignment covering a date, joined with its definition.
type Resolved struct {
	Assignment   Assignment
	Definition   Definition
	RotationWeek int
}
