package event

import (
	"context"
	"time"
)

type EventRepository interface {
	// CreateWithNormalization stores the raw event and its derived tags
	// in one transaction. The raw row is append-only.
	CreateWithNormalization(ctx context.Context, ev Event, norm Normalization) (Normalized, error)

	// ListForEmployeeDay returns normalized events inside the local-day
	// window [dayStart, dayEnd), ordered by recorded_at then insertion
	// order.
	ListForEmployeeDay(ctx context.Context, employeeID string, dayStart, dayEnd time.Time, companyID string) ([]Normalized, error)

	// ListForCompanyWindow returns normalized events for the lookback
	// window, for anomaly detection.
	ListForCompanyWindow(ctx context.Context, companyID string, from, to time.Time) ([]Normalized, error)

	DeviceExists(ctx context.Context, deviceID string, companyID string) (bool, error)
}
