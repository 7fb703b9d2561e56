package shift

import (
	"context"
	"fmt"
	"time"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/shift"
)

// Resolver answers "which shift applies to this employee on this
// date". Exactly one active assignment may cover a date; more than one
// is a data-integrity fault that gets reported, never resolved by
// picking arbitrarily.
type Resolver struct {
	shift.DefinitionRepository
	shift.AssignmentRepository
}

func NewResolver(definitionRepo shift.DefinitionRepository, assignmentRepo shift.AssignmentRepository) *Resolver {
	return &Resolver{
		DefinitionRepository: definitionRepo,
		AssignmentRepository: assignmentRepo,
	}
}

// Resolve returns the single active assignment covering the date,
// joined with its definition and rotation week. Returns
// shift.ErrUnassigned when none covers it and
// shift.ErrOverlappingAssignment when several do.
func (r *Resolver) Resolve(ctx context.Context, companyID, employeeID string, date time.Time) (shift.Resolved, error) {
	assignments, err := r.AssignmentRepository.ListActiveCovering(ctx, employeeID, date, companyID)
	if err != nil {
		return shift.Resolved{}, fmt.Errorf("failed to list shift assignments: %w", err)
	}

	switch len(assignments) {
	case 0:
		return shift.Resolved{}, shift.ErrUnassigned
	case 1:
		// fallthrough below
	default:
		return shift.Resolved{}, fmt.Errorf("%w: employee %s has %d active assignments on %s",
			shift.ErrOverlappingAssignment, employeeID, len(assignments), date.Format("2006-01-02"))
	}

	assignment := assignments[0]
	definition, err := r.DefinitionRepository.GetByID(ctx, assignment.ShiftID, companyID)
	if err != nil {
		return shift.Resolved{}, fmt.Errorf("failed to get shift definition: %w", err)
	}

	return shift.Resolved{
		Assignment:   assignment,
		Definition:   definition,
		RotationWeek: assignment.RotationWeek(date),
	}, nil
}
