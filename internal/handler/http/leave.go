package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/leave"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/handler/http/response"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/jwt"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/validator"
	leaveService "github.com/talenttrack-hr/talenttrack-backend-go/internal/service/leave"
)

type LeaveHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)
	Balances(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	jwtService jwt.Service
	leaveSvc   *leaveService.Service
}

func NewLeaveHandler(jwtService jwt.Service, leaveSvc *leaveService.Service) LeaveHandler {
	return &leaveHandlerImpl{
		jwtService: jwtService,
		leaveSvc:   leaveSvc,
	}
}

// Submit implements LeaveHandler.
func (h *leaveHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtService.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var req leave.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	request, err := h.leaveSvc.Submit(r.Context(), claims.CompanyID, &req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", request)
}

// List implements LeaveHandler.
func (h *leaveHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtService.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	var status *leave.RequestStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := leave.RequestStatus(raw)
		switch s {
		case leave.StatusPending, leave.StatusApproved, leave.StatusRejected, leave.StatusCancelled:
			status = &s
		default:
			response.BadRequest(w, "status must be one of: pending, approved, rejected, cancelled", nil)
			return
		}
	}

	requests, err := h.leaveSvc.List(r.Context(), claims.CompanyID, status)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, requests)
}

// Get implements LeaveHandler.
func (h *leaveHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtService.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	requestID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(requestID) {
		response.BadRequest(w, "id must be a valid UUID", nil)
		return
	}

	request, trail, err := h.leaveSvc.GetByID(r.Context(), claims.CompanyID, requestID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"request":   request,
		"approvals": trail,
	})
}

// Approve implements LeaveHandler.
func (h *leaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.leaveSvc.Approve, "Leave request approved")
}

// Reject implements LeaveHandler.
func (h *leaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.leaveSvc.Reject, "Leave request rejected")
}

// Cancel implements LeaveHandler.
func (h *leaveHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.leaveSvc.Cancel, "Leave request cancelled")
}

type decisionFunc func(ctx context.Context, companyID, requestID, actorID string, req *leave.DecisionRequest) (leave.Request, error)

func (h *leaveHandlerImpl) decide(w http.ResponseWriter, r *http.Request, fn decisionFunc, message string) {
	claims, err := h.jwtService.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	requestID := chi.URLParam(r, "id")
	if !validator.IsValidUUID(requestID) {
		response.BadRequest(w, "id must be a valid UUID", nil)
		return
	}

	req := &leave.DecisionRequest{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	request, err := fn(r.Context(), claims.CompanyID, requestID, claims.EmployeeID, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, request)
}

// Balances implements LeaveHandler.
func (h *leaveHandlerImpl) Balances(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtService.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = strconv.Itoa(time.Now().UTC().Year())
	}

	balances, err := h.leaveSvc.Balances(r.Context(), claims.CompanyID, period)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, balances)
}
