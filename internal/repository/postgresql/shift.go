package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/shift"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/database"
)

type shiftDefinitionRepositoryImpl struct {
	db *database.DB
}

func NewShiftDefinitionRepository(db *database.DB) shift.DefinitionRepository {
	return &shiftDefinitionRepositoryImpl{db: db}
}

func (r *shiftDefinitionRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (shift.Definition, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, start_time, end_time, weekdays, tolerance_minutes,
			   expected_daily_minutes, requires_gps, requires_photo, created_at
		FROM shift_definitions
		WHERE id = $1 AND company_id = $2
	`

	var (
		d        shift.Definition
		weekdays int16
	)
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&d.ID,
		&d.CompanyID,
		&d.Name,
		&d.StartTime,
		&d.EndTime,
		&weekdays,
		&d.ToleranceMinutes,
		&d.ExpectedDailyMinutes,
		&d.RequiresGPS,
		&d.RequiresPhoto,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Definition{}, shift.ErrShiftNotFound
		}
		return shift.Definition{}, err
	}
	d.Weekdays = shift.Weekdays(weekdays)

	return d, nil
}

type shiftAssignmentRepositoryImpl struct {
	db *database.DB
}

func NewShiftAssignmentRepository(db *database.DB) shift.AssignmentRepository {
	return &shiftAssignmentRepositoryImpl{db: db}
}

func (r *shiftAssignmentRepositoryImpl) ListActiveCovering(ctx context.Context, employeeID string, date time.Time, companyID string) ([]shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_id, shift_id, effective_start, effective_end,
			   rotating, rotation_anchor, cycle_length_weeks, active, created_at, updated_at
		FROM shift_assignments
		WHERE employee_id = $1 AND company_id = $2 AND active = true
		  AND effective_start <= $3
		  AND (effective_end IS NULL OR effective_end >= $3)
		ORDER BY effective_start
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []shift.Assignment
	for rows.Next() {
		var a shift.Assignment
		err := rows.Scan(
			&a.ID,
			&a.CompanyID,
			&a.EmployeeID,
			&a.ShiftID,
			&a.EffectiveStart,
			&a.EffectiveEnd,
			&a.Rotating,
			&a.RotationAnchor,
			&a.CycleLengthWeeks,
			&a.Active,
			&a.CreatedAt,
			&a.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}
