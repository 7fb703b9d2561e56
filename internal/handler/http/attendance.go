package http

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/event"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/rule"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/handler/http/response"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/jwt"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/validator"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/service/normalizer"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/service/reconcile"
)

type AttendanceHandler interface {
	IngestEvent(w http.ResponseWriter, r *http.Request)
	Reconcile(w http.ResponseWriter, r *http.Request)
	GetSummaries(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	jwtService    jwt.Service
	normalizerSvc *normalizer.Service
	reconcileSvc  *reconcile.Service
}

func NewAttendanceHandler(jwtService jwt.Service, normalizerSvc *normalizer.Service, reconcileSvc *reconcile.Service) AttendanceHandler {
	return &attendanceHandlerImpl{
		jwtService:    jwtService,
		normalizerSvc: normalizerSvc,
		reconcileSvc:  reconcileSvc,
	}
}

// IngestEvent implements AttendanceHandler.
func (h *attendanceHandlerImpl) IngestEvent(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtService.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req event.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	stored, err := h.normalizerSvc.Ingest(r.Context(), claims.CompanyID, &req, clientIP(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Event recorded", toIngestResponse(stored))
}

// ReconcileRequest triggers a rebuild for one employee-day or, when
// employee_id is omitted, the whole company for the date.
type ReconcileRequest struct {
	EmployeeID string `json:"employee_id,omitempty"`
	Date       string `json:"date"`
}

// Reconcile implements AttendanceHandler.
func (h *attendanceHandlerImpl) Reconcile(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtService.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	date, ok := validator.IsValidDate(req.Date)
	if !ok {
		response.BadRequest(w, "date must be in YYYY-MM-DD format", nil)
		return
	}

	if req.EmployeeID != "" {
		if !validator.IsValidUUID(req.EmployeeID) {
			response.BadRequest(w, "employee_id must be a valid UUID", nil)
			return
		}
		result, err := h.reconcileSvc.ReconcileDay(r.Context(), claims.CompanyID, req.EmployeeID, date)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.SuccessWithMessage(w, "Reconciliation completed", result)
		return
	}

	result, err := h.reconcileSvc.ReconcileCompanyDay(r.Context(), claims.CompanyID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Reconciliation completed", result)
}

// GetSummaries implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetSummaries(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtService.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	employeeID := r.URL.Query().Get("employee_id")
	if !validator.IsValidUUID(employeeID) {
		response.BadRequest(w, "employee_id must be a valid UUID", nil)
		return
	}
	from, okFrom := validator.IsValidDate(r.URL.Query().Get("from"))
	to, okTo := validator.IsValidDate(r.URL.Query().Get("to"))
	if !okFrom || !okTo {
		response.BadRequest(w, "from and to must be in YYYY-MM-DD format", nil)
		return
	}

	summaries, err := h.reconcileSvc.ListSummaries(r.Context(), claims.CompanyID, employeeID, from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, summaries)
}

func toIngestResponse(n event.Normalized) event.IngestResponse {
	within := string(rule.ContainmentUnknown)
	if n.WithinGeofence != "" {
		within = string(n.WithinGeofence)
	}
	return event.IngestResponse{
		ID:             n.ID,
		EmployeeID:     n.EmployeeID,
		Kind:           string(n.Kind),
		Source:         string(n.Source),
		RecordedAt:     n.RecordedAt.Format(time.RFC3339),
		WithinGeofence: within,
		MissingGPS:     n.MissingGPS,
		MissingPhoto:   n.MissingPhoto,
		IPAllowed:      n.IPAllowed,
		Latitude:       n.Latitude,
		Longitude:      n.Longitude,
	}
}

// clientIP extracts the remote address without its port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
