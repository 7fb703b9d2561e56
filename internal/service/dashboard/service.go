package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/company"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/employee"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/kpi"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/summary"
)

// Overview is the company attendance snapshot: today's presence plus a
// per-day trend over the lookback window. Derived on read from stored
// summaries, never persisted.
type Overview struct {
	CompanyID       string    `json:"company_id"`
	Date            time.Time `json:"date"`
	ActiveEmployees int       `json:"active_employees"`
	PresentToday    int       `json:"present_today"`
	PresenceRatePct float64   `json:"presence_rate_pct"`

	Series []DayPoint `json:"series"`
}

// DayPoint is one day of the trend series.
type DayPoint struct {
	Date            time.Time `json:"date"`
	Present         int       `json:"present"`
	LateMinutes     int       `json:"late_minutes"`
	OvertimeMinutes int       `json:"overtime_minutes"`
	Incomplete      int       `json:"incomplete"`
}

// KPISnapshot is the stored KPI results for a period with their
// severity distribution.
type KPISnapshot struct {
	CompanyID string         `json:"company_id"`
	Period    string         `json:"period"`
	Results   []kpi.Result   `json:"results"`
	Severity  map[string]int `json:"severity_distribution"`
}

type Service struct {
	companyRepo  company.CompanyRepository
	employeeRepo employee.EmployeeRepository
	summaryRepo  summary.SummaryRepository
	resultRepo   kpi.ResultRepository
}

func NewService(
	companyRepo company.CompanyRepository,
	employeeRepo employee.EmployeeRepository,
	summaryRepo summary.SummaryRepository,
	resultRepo kpi.ResultRepository,
) *Service {
	return &Service{
		companyRepo:  companyRepo,
		employeeRepo: employeeRepo,
		summaryRepo:  summaryRepo,
		resultRepo:   resultRepo,
	}
}

// GetOverview builds the attendance overview for the company's current
// day and the preceding windowDays.
func (s *Service) GetOverview(ctx context.Context, companyID string, windowDays int) (Overview, error) {
	comp, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return Overview{}, fmt.Errorf("failed to get company: %w", err)
	}
	loc, err := time.LoadLocation(comp.Timezone)
	if err != nil {
		return Overview{}, fmt.Errorf("invalid company timezone %q: %w", comp.Timezone, err)
	}
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	from := today.AddDate(0, 0, -windowDays)

	activeCount, err := s.employeeRepo.CountActiveByCompanyID(ctx, companyID)
	if err != nil {
		return Overview{}, fmt.Errorf("failed to count active employees: %w", err)
	}

	summaries, err := s.summaryRepo.ListForCompanyRange(ctx, companyID, from, today)
	if err != nil {
		return Overview{}, fmt.Errorf("failed to list summaries: %w", err)
	}

	byDay := make(map[string]*DayPoint)
	for _, sum := range summaries {
		key := sum.Date.Format("2006-01-02")
		point, ok := byDay[key]
		if !ok {
			point = &DayPoint{Date: time.Date(sum.Date.Year(), sum.Date.Month(), sum.Date.Day(), 0, 0, 0, 0, loc)}
			byDay[key] = point
		}
		if sum.Status != summary.StatusNoRecords {
			point.Present++
		}
		if sum.Status == summary.StatusIncomplete {
			point.Incomplete++
		}
		point.LateMinutes += sum.LateMinutes
		point.OvertimeMinutes += sum.OvertimeMinutes
	}

	series := make([]DayPoint, 0, len(byDay))
	for _, point := range byDay {
		series = append(series, *point)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })

	overview := Overview{
		CompanyID:       companyID,
		Date:            today,
		ActiveEmployees: activeCount,
		Series:          series,
	}
	if point, ok := byDay[today.Format("2006-01-02")]; ok {
		overview.PresentToday = point.Present
	}
	if activeCount > 0 {
		overview.PresenceRatePct = float64(overview.PresentToday) / float64(activeCount) * 100
	}

	return overview, nil
}

// GetKPISnapshot returns the period's stored KPI results with a
// severity tally. Insufficient-data results count under their own key
// so dashboards can surface coverage gaps.
func (s *Service) GetKPISnapshot(ctx context.Context, companyID, period string) (KPISnapshot, error) {
	results, err := s.resultRepo.ListByCompanyPeriod(ctx, companyID, period)
	if err != nil {
		return KPISnapshot{}, fmt.Errorf("failed to list kpi results: %w", err)
	}

	severity := map[string]int{}
	for _, r := range results {
		switch {
		case r.InsufficientData:
			severity["insufficient_data"]++
		case r.Severity != nil:
			severity[string(*r.Severity)]++
		}
	}

	return KPISnapshot{
		CompanyID: companyID,
		Period:    period,
		Results:   results,
		Severity:  severity,
	}, nil
}
