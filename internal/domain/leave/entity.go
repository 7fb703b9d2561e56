package leave

import "time"

// Type is a leave category (vacation, sick, unpaid...).
type Type struct {
	ID               string
	CompanyID        string
	Name             string
	AffectsBalance   bool
	RequiresDocument bool
	CreatedAt        time.Time
}

// RequestStatus is the workflow state of a leave request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCancelled RequestStatus = "cancelled"
)

// CanTransition encodes the workflow state machine:
// pending → approved | rejected | cancelled, approved → cancelled.
// Everything else is an invalid transition. Cancellation never deletes
// the row, it only flips state.
func CanTransition(from, to RequestStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusApproved || to == StatusRejected || to == StatusCancelled
	case StatusApproved:
		return to == StatusCancelled
	default:
		return false
	}
}

// Request is a leave/vacation request moving through the approval
// workflow. Business days are computed at submission and frozen once
// the request leaves pending.
type Request struct {
	ID           string
	CompanyID    string
	EmployeeID   string
	LeaveTypeID  string
	StartDate    time.Time
	EndDate      time.Time
	BusinessDays int
	Period       string // balance period label, e.g. "2026"
	Status       RequestStatus
	Reason       string
	DocumentRef  *string

	ApprovedBy  *string
	ApprovedAt  *time.Time
	CancelledBy *string
	CancelledAt *time.Time

	SubmittedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Joined for responses
	LeaveTypeName *string
	EmployeeName  *string
}

// ApprovalAction is what an audit row records.
type ApprovalAction string

const (
	ActionSubmit  ApprovalAction = "submit"
	ActionApprove ApprovalAction = "approve"
	ActionReject  ApprovalAction = "reject"
	ActionCancel  ApprovalAction = "cancel"
)

// Approval is one append-only audit row; rows are never mutated.
type Approval struct {
	ID         string
	CompanyID  string
	RequestID  string
	ActorID    string
	Action     ApprovalAction
	Comment    *string
	RecordedAt time.Time
}

// Balance is the per-period leave ledger. Unique per
// (company, employee, period); available = granted − consumed always.
type Balance struct {
	ID            string
	CompanyID     string
	EmployeeID    string
	Period        string
	DaysGranted   int
	DaysConsumed  int
	DaysAvailable int
	UpdatedAt     time.Time
}
