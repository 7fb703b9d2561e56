package leave

import "errors"

var (
	ErrRequestNotFound      = errors.New("leave request not found")
	ErrTypeNotFound         = errors.New("leave type not found")
	ErrBalanceNotFound      = errors.New("leave balance not found")
	ErrInvalidTransition    = errors.New("invalid leave request state transition")
	ErrUnauthorizedApprover = errors.New("approver is not authorized for this request")
	ErrInsufficientBalance  = errors.New("insufficient leave balance")
	ErrInvalidDateRange     = errors.New("leave end date precedes start date")
)
