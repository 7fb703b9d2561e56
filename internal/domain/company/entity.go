package company

import "time"

// Company is the tenant root. Every other entity is owned by exactly
// one company and repositories scope every query by its id.
type Company struct {
	ID        string
	Name      string
	Timezone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
