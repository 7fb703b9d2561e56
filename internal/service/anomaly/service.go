package anomaly

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/company"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/employee"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/event"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/leave"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/rule"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/summary"
)

// topTardinessLimit caps the ranked tardiness list.
const topTardinessLimit = 5

// Report is the anomaly snapshot for a company over a lookback window.
// It is computed on read, never stored.
type Report struct {
	CompanyID string    `json:"company_id"`
	From      time.Time `json:"from"`
	To        time.Time `json:"to"`

	OutOfGeofenceCount int `json:"out_of_geofence_count"`
	MissingGPSCount    int `json:"missing_gps_count"`
	IPDeniedCount      int `json:"ip_denied_count"`

	// IncompleteToday lists employees whose current day is incomplete
	// or empty, excluding those on approved leave.
	IncompleteToday []IncompleteEntry `json:"incomplete_today"`

	TopTardiness []TardinessEntry `json:"top_tardiness"`
}

type IncompleteEntry struct {
	EmployeeID   string         `json:"employee_id"`
	EmployeeName string         `json:"employee_name"`
	Status       summary.Status `json:"status"`
}

type TardinessEntry struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	LateMinutes  int    `json:"late_minutes"`
	LateDays     int    `json:"late_days"`
}

// ReportInput is the raw material for the pure report fold.
type ReportInput struct {
	CompanyID string
	From      time.Time
	Today     time.Time

	Events    []event.Normalized
	Summaries []summary.DailySummary
	Employees []employee.Employee
	OnLeave   map[string]bool // employeeID -> approved leave covers today
}

// BuildReport folds window data into a Report. Pure so the counting
// rules are testable without a store.
func BuildReport(in ReportInput) Report {
	report := Report{
		CompanyID: in.CompanyID,
		From:      in.From,
		To:        in.Today,
	}

	for _, ev := range in.Events {
		if ev.WithinGeofence == rule.ContainmentOutside {
			report.OutOfGeofenceCount++
		}
		if ev.MissingGPS {
			report.MissingGPSCount++
		}
		if !ev.IPAllowed {
			report.IPDeniedCount++
		}
	}

	names := make(map[string]string, len(in.Employees))
	for _, emp := range in.Employees {
		names[emp.ID] = emp.FullName
	}

	todayStatus := make(map[string]summary.Status, len(in.Employees))
	lateMinutes := make(map[string]int)
	lateDays := make(map[string]int)
	for _, s := range in.Summaries {
		if sameDay(s.Date, in.Today) {
			todayStatus[s.EmployeeID] = s.Status
		}
		if s.LateMinutes > 0 {
			lateMinutes[s.EmployeeID] += s.LateMinutes
			lateDays[s.EmployeeID]++
		}
	}

	for _, emp := range in.Employees {
		if in.OnLeave[emp.ID] {
			continue
		}
		status, ok := todayStatus[emp.ID]
		if !ok {
			status = summary.StatusNoRecords
		}
		if status == summary.StatusComplete {
			continue
		}
		report.IncompleteToday = append(report.IncompleteToday, IncompleteEntry{
			EmployeeID:   emp.ID,
			EmployeeName: emp.FullName,
			Status:       status,
		})
	}
	sort.Slice(report.IncompleteToday, func(i, j int) bool {
		return report.IncompleteToday[i].EmployeeName < report.IncompleteToday[j].EmployeeName
	})

	for empID, minutes := range lateMinutes {
		report.TopTardiness = append(report.TopTardiness, TardinessEntry{
			EmployeeID:   empID,
			EmployeeName: names[empID],
			LateMinutes:  minutes,
			LateDays:     lateDays[empID],
		})
	}
	sort.Slice(report.TopTardiness, func(i, j int) bool {
		if report.TopTardiness[i].LateMinutes == report.TopTardiness[j].LateMinutes {
			return report.TopTardiness[i].EmployeeID < report.TopTardiness[j].EmployeeID
		}
		return report.TopTardiness[i].LateMinutes > report.TopTardiness[j].LateMinutes
	})
	if len(report.TopTardiness) > topTardinessLimit {
		report.TopTardiness = report.TopTardiness[:topTardinessLimit]
	}

	return report
}

// Service assembles anomaly reports from the event log and stored
// summaries.
type Service struct {
	companyRepo  company.CompanyRepository
	employeeRepo employee.EmployeeRepository
	eventRepo    event.EventRepository
	summaryRepo  summary.SummaryRepository
	leaveRepo    leave.RequestRepository
}

func NewService(
	companyRepo company.CompanyRepository,
	employeeRepo employee.EmployeeRepository,
	eventRepo event.EventRepository,
	summaryRepo summary.SummaryRepository,
	leaveRepo leave.RequestRepository,
) *Service {
	return &Service{
		companyRepo:  companyRepo,
		employeeRepo: employeeRepo,
		eventRepo:    eventRepo,
		summaryRepo:  summaryRepo,
		leaveRepo:    leaveRepo,
	}
}

// Detect builds the anomaly report for [today − windowDays, today].
// Summaries are keyed to the company-local calendar date, so "today" is
// derived in the company's timezone, not the caller's clock.
func (s *Service) Detect(ctx context.Context, companyID string, now time.Time, windowDays int) (Report, error) {
	comp, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to get company: %w", err)
	}
	loc, err := time.LoadLocation(comp.Timezone)
	if err != nil {
		return Report{}, fmt.Errorf("invalid company timezone %q: %w", comp.Timezone, err)
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	from := today.AddDate(0, 0, -windowDays)

	employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, companyID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	evs, err := s.eventRepo.ListForCompanyWindow(ctx, companyID, from, today.AddDate(0, 0, 1))
	if err != nil {
		return Report{}, fmt.Errorf("failed to list events: %w", err)
	}

	summaries, err := s.summaryRepo.ListForCompanyRange(ctx, companyID, from, today)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list summaries: %w", err)
	}

	// Only employees that would otherwise be flagged need the leave
	// lookup.
	todayComplete := make(map[string]bool)
	for _, sum := range summaries {
		if sameDay(sum.Date, today) && sum.Status == summary.StatusComplete {
			todayComplete[sum.EmployeeID] = true
		}
	}
	onLeave := make(map[string]bool)
	for _, emp := range employees {
		if todayComplete[emp.ID] {
			continue
		}
		covered, err := s.leaveRepo.HasApprovedFullDayCovering(ctx, emp.ID, today, companyID)
		if err != nil {
			return Report{}, fmt.Errorf("failed to check leave coverage: %w", err)
		}
		if covered {
			onLeave[emp.ID] = true
		}
	}

	return BuildReport(ReportInput{
		CompanyID: companyID,
		From:      from,
		Today:     today,
		Events:    evs,
		Summaries: summaries,
		Employees: employees,
		OnLeave:   onLeave,
	}), nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
