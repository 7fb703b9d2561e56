package response

import (
	"errors"
	"net/http"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/company"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/employee"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/event"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/kpi"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/leave"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/rule"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/shift"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/summary"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Company / employee errors
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeRetired):
		Conflict(w, "Employee is retired")

	// Event errors
	case errors.Is(err, event.ErrUnknownEmployee):
		BadRequest(w, "Unknown employee", nil)
	case errors.Is(err, event.ErrUnknownDevice):
		BadRequest(w, "Unknown device", nil)
	case errors.Is(err, event.ErrInvalidKind):
		BadRequest(w, "Invalid event type", nil)
	case errors.Is(err, event.ErrInvalidSource):
		BadRequest(w, "Invalid event source", nil)
	case errors.Is(err, event.ErrMalformedLocation):
		BadRequest(w, "Malformed event coordinates", nil)
	case errors.Is(err, event.ErrEventNotFound):
		NotFound(w, "Attendance event not found")

	// Shift errors
	case errors.Is(err, shift.ErrShiftNotFound):
		NotFound(w, "Shift not found")
	case errors.Is(err, shift.ErrUnassigned):
		NotFound(w, "No shift assignment covers this date")
	case errors.Is(err, shift.ErrOverlappingAssignment):
		Conflict(w, "Multiple active shift assignments cover this date")

	// Rule errors
	case errors.Is(err, rule.ErrRuleNotFound):
		NotFound(w, "Attendance rule not found")
	case errors.Is(err, rule.ErrGeofenceNotFound):
		NotFound(w, "Geofence not found")

	// Summary errors
	case errors.Is(err, summary.ErrSummaryNotFound):
		NotFound(w, "Daily summary not found")

	// Leave errors
	case errors.Is(err, leave.ErrRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrTypeNotFound):
		NotFound(w, "Leave type not found")
	case errors.Is(err, leave.ErrBalanceNotFound):
		NotFound(w, "Leave balance not found")
	case errors.Is(err, leave.ErrInvalidTransition):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrUnauthorizedApprover):
		Forbidden(w, "Not authorized to decide this request")
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, "Insufficient leave balance", nil)
	case errors.Is(err, leave.ErrInvalidDateRange):
		BadRequest(w, "End date precedes start date", nil)

	// KPI errors
	case errors.Is(err, kpi.ErrDefinitionNotFound):
		NotFound(w, "KPI definition not found")
	case errors.Is(err, kpi.ErrResultNotFound):
		NotFound(w, "KPI result not found")
	case errors.Is(err, kpi.ErrInvalidFormula):
		BadRequest(w, "Invalid KPI formula", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
