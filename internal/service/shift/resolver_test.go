package shift

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/shift"
)

type fakeDefinitionRepo struct {
	definitions map[string]domain.Definition
}

func (f *fakeDefinitionRepo) GetByID(ctx context.Context, id string, companyID string) (domain.Definition, error) {
	d, ok := f.definitions[id]
	if !ok {
		return domain.Definition{}, domain.ErrShiftNotFound
	}
	return d, nil
}

type fakeAssignmentRepo struct {
	assignments []domain.Assignment
}

func (f *fakeAssignmentRepo) ListActiveCovering(ctx context.Context, employeeID string, date time.Time, companyID string) ([]domain.Assignment, error) {
	var out []domain.Assignment
	for _, a := range f.assignments {
		if a.EmployeeID == employeeID && a.CompanyID == companyID && a.Active && a.CoversDate(date) {
			out = append(out, a)
		}
	}
	return out, nil
}

func testDate() time.Time {
	return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
}

func TestResolveSingleAssignment(t *testing.T) {
	anchor := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	resolver := NewResolver(
		&fakeDefinitionRepo{definitions: map[string]domain.Definition{
			"shift-1": {ID: "shift-1", Name: "Day", StartTime: "09:00", EndTime: "17:00"},
		}},
		&fakeAssignmentRepo{assignments: []domain.Assignment{
			{
				ID: "as-1", CompanyID: "co-1", EmployeeID: "emp-1", ShiftID: "shift-1",
				EffectiveStart: anchor, Active: true,
				Rotating: true, CycleLengthWeeks: 2,
			},
		}},
	)

	resolved, err := resolver.Resolve(context.Background(), "co-1", "emp-1", testDate())

	require.NoError(t, err)
	assert.Equal(t, "shift-1", resolved.Definition.ID)
	// 2026-03-10 is 64 days after the anchor: week 9, cycle of 2.
	assert.Equal(t, 1, resolved.RotationWeek)
}

func TestResolveUnassigned(t *testing.T) {
	resolver := NewResolver(
		&fakeDefinitionRepo{},
		&fakeAssignmentRepo{},
	)

	_, err := resolver.Resolve(context.Background(), "co-1", "emp-1", testDate())

	assert.ErrorIs(t, err, domain.ErrUnassigned)
}

func TestResolveOverlappingAssignments(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	resolver := NewResolver(
		&fakeDefinitionRepo{},
		&fakeAssignmentRepo{assignments: []domain.Assignment{
			{ID: "as-1", CompanyID: "co-1", EmployeeID: "emp-1", ShiftID: "shift-1", EffectiveStart: start, Active: true},
			{ID: "as-2", CompanyID: "co-1", EmployeeID: "emp-1", ShiftID: "shift-2", EffectiveStart: start, Active: true},
		}},
	)

	_, err := resolver.Resolve(context.Background(), "co-1", "emp-1", testDate())

	assert.ErrorIs(t, err, domain.ErrOverlappingAssignment)
}

func TestResolveIgnoresInactiveAndExpired(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ended := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	resolver := NewResolver(
		&fakeDefinitionRepo{definitions: map[string]domain.Definition{
			"shift-2": {ID: "shift-2", Name: "Current"},
		}},
		&fakeAssignmentRepo{assignments: []domain.Assignment{
			{ID: "as-1", CompanyID: "co-1", EmployeeID: "emp-1", ShiftID: "shift-1", EffectiveStart: start, EffectiveEnd: &ended, Active: true},
			{ID: "as-2", CompanyID: "co-1", EmployeeID: "emp-1", ShiftID: "shift-2", EffectiveStart: ended, Active: true},
			{ID: "as-3", CompanyID: "co-1", EmployeeID: "emp-1", ShiftID: "shift-3", EffectiveStart: start, Active: false},
		}},
	)

	resolved, err := resolver.Resolve(context.Background(), "co-1", "emp-1", testDate())

	require.NoError(t, err)
	assert.Equal(t, "shift-2", resolved.Definition.ID)
}
