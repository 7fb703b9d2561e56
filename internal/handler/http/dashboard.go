package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/handler/http/response"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/jwt"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/service/anomaly"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/service/dashboard"
)

type DashboardHandler interface {
	Overview(w http.ResponseWriter, r *http.Request)
	Anomalies(w http.ResponseWriter, r *http.Request)
	KPI(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	jwtService   jwt.Service
	dashboardSvc *dashboard.Service
	anomalySvc   *anomaly.Service
	lookbackDays int
}

func NewDashboardHandler(jwtService jwt.Service, dashboardSvc *dashboard.Service, anomalySvc *anomaly.Service, lookbackDays int) DashboardHandler {
	return &dashboardHandlerImpl{
		jwtService:   jwtService,
		dashboardSvc: dashboardSvc,
		anomalySvc:   anomalySvc,
		lookbackDays: lookbackDays,
	}
}

// Overview implements DashboardHandler.
func (h *dashboardHandlerImpl) Overview(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtService.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	overview, err := h.dashboardSvc.GetOverview(r.Context(), claims.CompanyID, h.windowDays(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, overview)
}

// Anomalies implements DashboardHandler.
func (h *dashboardHandlerImpl) Anomalies(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtService.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	report, err := h.anomalySvc.Detect(r.Context(), claims.CompanyID, time.Now(), h.windowDays(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, report)
}

// KPI implements DashboardHandler.
func (h *dashboardHandlerImpl) KPI(w http.ResponseWriter, r *http.Request) {
	claims, err := h.jwtService.ClaimsFromContext(r.Context())
	if err != nil {
		response.Unauthorized(w, err.Error())
		return
	}

	period := r.URL.Query().Get("period")
	if period == "" {
		period = time.Now().UTC().Format("2006-01")
	}

	snapshot, err := h.dashboardSvc.GetKPISnapshot(r.Context(), claims.CompanyID, period)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, snapshot)
}

func (h *dashboardHandlerImpl) windowDays(r *http.Request) int {
	if raw := r.URL.Query().Get("window_days"); raw != "" {
		if days, err := strconv.Atoi(raw); err == nil && days > 0 && days <= 90 {
			return days
		}
	}
	return h.lookbackDays
}
