package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/leave"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/database"
)

type leaveTypeRepositoryImpl struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.TypeRepository {
	return &leaveTypeRepositoryImpl{db: db}
}

func (r *leaveTypeRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (leave.Type, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, affects_balance, requires_document, created_at
		FROM leave_types
		WHERE id = $1 AND company_id = $2
	`

	var t leave.Type
	err := q.QueryRow(ctx, query, id, companyID).Scan(
		&t.ID,
		&t.CompanyID,
		&t.Name,
		&t.AffectsBalance,
		&t.RequiresDocument,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Type{}, leave.ErrTypeNotFound
		}
		return leave.Type{}, err
	}

	return t, nil
}

func (r *leaveTypeRepositoryImpl) GetByCompanyID(ctx context.Context, companyID string) ([]leave.Type, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, name, affects_balance, requires_document, created_at
		FROM leave_types
		WHERE company_id = $1
		ORDER BY name
	`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []leave.Type
	for rows.Next() {
		var t leave.Type
		err := rows.Scan(&t.ID, &t.CompanyID, &t.Name, &t.AffectsBalance, &t.RequiresDocument, &t.CreatedAt)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}

	return types, rows.Err()
}
