package employee

import "time"

type Employee struct {
	ID         string
	CompanyID  string
	FullName   string
	HireDate   time.Time
	OrgUnitID  *string
	PositionID *string
	ManagerID  *string
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Status string

const (
	StatusActive  Status = "active"
	StatusRetired Status = "retired"
)

// Active reports whether the employee participates in attendance and
// KPI processing. Retired employees keep their history but stop
// producing new records.
func (e Employee) Active() bool {
	return e.Status == StatusActive
}
