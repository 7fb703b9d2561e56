package summary

import (
	"context"
	"time"
)

type SummaryRepository interface {
	// Upsert overwrites the summary keyed by (company, employee, date).
	Upsert(ctx context.Context, s DailySummary) (DailySummary, error)

	GetByKey(ctx context.Context, employeeID string, date time.Time, companyID string) (DailySummary, error)

	// ListForEmployeeRange returns summaries with date in [from, to],
	// ordered by date ascending.
	ListForEmployeeRange(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]DailySummary, error)

	// ListForCompanyRange returns every employee's summaries in the
	// range, for anomaly detection and rollups.
	ListForCompanyRange(ctx context.Context, companyID string, from, to time.Time) ([]DailySummary, error)
}
