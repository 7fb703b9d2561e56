package shift

import (
	"context"
	"time"
)

type DefinitionRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Definition, error)
}

type AssignmentRepository interface {
	// ListActiveCovering returns every active assignment whose effective
	// range contains the date. More than one result is an integrity
	// fault the caller must surface.
	ListActiveCovering(ctx context.Context, employeeID string, date time.Time, companyID string) ([]Assignment, error)
}
