package rule

import "context"

type RuleRepository interface {
	// GetCurrentByCompanyID returns the most recent attendance rule for
	// the company, or ErrRuleNotFound when none is configured.
	GetCurrentByCompanyID(ctx context.Context, companyID string) (AttendanceRule, error)
}

type GeofenceRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Geofence, error)
}
