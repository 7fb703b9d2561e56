package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/summary"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/database"
)

type summaryRepositoryImpl struct {
	db *database.DB
}

func NewSummaryRepository(db *database.DB) summary.SummaryRepository {
	return &summaryRepositoryImpl{db: db}
}

func (r *summaryRepositoryImpl) Upsert(ctx context.Context, s summary.DailySummary) (summary.DailySummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO daily_summaries (
			id, company_id, employee_id, date, first_entry, last_exit,
			worked_minutes, late_minutes, overtime_minutes, status, detail, computed_at
		) VALUES (
			uuidv7(), $1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, NOW()
		)
		ON CONFLICT (company_id, employee_id, date) DO UPDATE SET
			first_entry = EXCLUDED.first_entry,
			last_exit = EXCLUDED.last_exit,
			worked_minutes = EXCLUDED.worked_minutes,
			late_minutes = EXCLUDED.late_minutes,
			overtime_minutes = EXCLUDED.overtime_minutes,
			status = EXCLUDED.status,
			detail = EXCLUDED.detail,
			computed_at = NOW()
		RETURNING id, computed_at
	`

	err := q.QueryRow(ctx, query,
		s.CompanyID, s.EmployeeID, s.Date, s.FirstEntry, s.LastExit,
		s.WorkedMinutes, s.LateMinutes, s.OvertimeMinutes, s.Status, s.Detail,
	).Scan(&s.ID, &s.ComputedAt)
	if err != nil {
		return summary.DailySummary{}, err
	}

	return s, nil
}

const summaryColumns = `
	id, company_id, employee_id, date, first_entry, last_exit,
	worked_minutes, late_minutes, overtime_minutes, status, detail, computed_at
`

func (r *summaryRepositoryImpl) GetByKey(ctx context.Context, employeeID string, date time.Time, companyID string) (summary.DailySummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + summaryColumns + `
		FROM daily_summaries
		WHERE employee_id = $1 AND date = $2 AND company_id = $3
	`

	var s summary.DailySummary
	err := q.QueryRow(ctx, query, employeeID, date, companyID).Scan(
		&s.ID, &s.CompanyID, &s.EmployeeID, &s.Date, &s.FirstEntry, &s.LastExit,
		&s.WorkedMinutes, &s.LateMinutes, &s.OvertimeMinutes, &s.Status, &s.Detail, &s.ComputedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return summary.DailySummary{}, summary.ErrSummaryNotFound
		}
		return summary.DailySummary{}, err
	}

	return s, nil
}

func (r *summaryRepositoryImpl) ListForEmployeeRange(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]summary.DailySummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + summaryColumns + `
		FROM daily_summaries
		WHERE employee_id = $1 AND company_id = $2 AND date >= $3 AND date <= $4
		ORDER BY date
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func (r *summaryRepositoryImpl) ListForCompanyRange(ctx context.Context, companyID string, from, to time.Time) ([]summary.DailySummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + summaryColumns + `
		FROM daily_summaries
		WHERE company_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, employee_id
	`

	rows, err := q.Query(ctx, query, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func scanSummaries(rows pgx.Rows) ([]summary.DailySummary, error) {
	var summaries []summary.DailySummary
	for rows.Next() {
		var s summary.DailySummary
		err := rows.Scan(
			&s.ID, &s.CompanyID, &s.EmployeeID, &s.Date, &s.FirstEntry, &s.LastExit,
			&s.WorkedMinutes, &s.LateMinutes, &s.OvertimeMinutes, &s.Status, &s.Detail, &s.ComputedAt,
		)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}
