package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/leave"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/database"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

func (r *leaveBalanceRepositoryImpl) GetByKey(ctx context.Context, employeeID, period, companyID string) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_id, period, days_granted, days_consumed, days_available, updated_at
		FROM leave_balances
		WHERE employee_id = $1 AND period = $2 AND company_id = $3
	`

	var b leave.Balance
	err := q.QueryRow(ctx, query, employeeID, period, companyID).Scan(
		&b.ID, &b.CompanyID, &b.EmployeeID, &b.Period,
		&b.DaysGranted, &b.DaysConsumed, &b.DaysAvailable, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Balance{}, leave.ErrBalanceNotFound
		}
		return leave.Balance{}, err
	}

	return b, nil
}

func (r *leaveBalanceRepositoryImpl) AdjustConsumed(ctx context.Context, tx pgx.Tx, employeeID, period, companyID string, delta int) error {
	// days_available is always granted minus consumed; both move in one
	// statement so the ledger can never drift.
	query := `
		UPDATE leave_balances SET
			days_consumed = days_consumed + $1,
			days_available = days_granted - (days_consumed + $1),
			updated_at = NOW()
		WHERE employee_id = $2 AND period = $3 AND company_id = $4
	`

	tag, err := tx.Exec(ctx, query, delta, employeeID, period, companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return leave.ErrBalanceNotFound
	}

	return nil
}

func (r *leaveBalanceRepositoryImpl) ListByCompanyPeriod(ctx context.Context, companyID, period string) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, company_id, employee_id, period, days_granted, days_consumed, days_available, updated_at
		FROM leave_balances
		WHERE company_id = $1 AND period = $2
		ORDER BY employee_id
	`

	rows, err := q.Query(ctx, query, companyID, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []leave.Balance
	for rows.Next() {
		var b leave.Balance
		err := rows.Scan(
			&b.ID, &b.CompanyID, &b.EmployeeID, &b.Period,
			&b.DaysGranted, &b.DaysConsumed, &b.DaysAvailable, &b.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}

	return balances, rows.Err()
}

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) leave.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

func (r *holidayRepositoryImpl) ListRange(ctx context.Context, companyID string, from, to time.Time) ([]time.Time, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT date FROM holidays
		WHERE company_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date
	`, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}

	return dates, rows.Err()
}
