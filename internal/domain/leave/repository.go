package leave

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type TypeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Type, error)
	GetByCompanyID(ctx context.Context, companyID string) ([]Type, error)
}

type RequestRepository interface {
	// Create inserts the request inside the given transaction so the
	// submit audit row commits with it.
	Create(ctx context.Context, tx pgx.Tx, req Request) (Request, error)
	GetByID(ctx context.Context, id string, companyID string) (Request, error)
	ListByCompany(ctx context.Context, companyID string, status *RequestStatus) ([]Request, error)

	// UpdateStatus flips the workflow state inside the given transaction
	// so it commits atomically with audit and balance rows.
	UpdateStatus(ctx context.Context, tx pgx.Tx, req Request) error

	// HasApprovedFullDayCovering reports whether the employee has an
	// approved leave covering the date. Used to exclude on-leave
	// employees from incomplete-day alerts.
	HasApprovedFullDayCovering(ctx context.Context, employeeID string, date time.Time, companyID string) (bool, error)
}

type ApprovalRepository interface {
	// Append inserts an audit row; the log is append-only.
	Append(ctx context.Context, tx pgx.Tx, a Approval) error
	ListByRequest(ctx context.Context, requestID string, companyID string) ([]Approval, error)
}

type BalanceRepository interface {
	GetByKey(ctx context.Context, employeeID, period, companyID string) (Balance, error)

	// AdjustConsumed adds delta to days_consumed and recomputes
	// days_available in one statement, inside the caller's transaction.
	AdjustConsumed(ctx context.Context, tx pgx.Tx, employeeID, period, companyID string, delta int) error

	ListByCompanyPeriod(ctx context.Context, companyID, period string) ([]Balance, error)
}

type HolidayRepository interface {
	// ListRange returns company holiday dates within [from, to].
	ListRange(ctx context.Context, companyID string, from, to time.Time) ([]time.Time, error)
}
