package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/config"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/company"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/employee"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/event"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/rule"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/shift"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/summary"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/events"
)

// ShiftResolver resolves the applicable shift for an employee on a
// date. Satisfied by the shift service's Resolver.
type ShiftResolver interface {
	Resolve(ctx context.Context, companyID, employeeID string, date time.Time) (shift.Resolved, error)
}

// Service rebuilds daily attendance summaries from the immutable event
// log. Rebuilds are idempotent: every run derives the summary from
// scratch and overwrites the stored row.
type Service struct {
	companyRepo  company.CompanyRepository
	employeeRepo employee.EmployeeRepository
	eventRepo    event.EventRepository
	summaryRepo  summary.SummaryRepository
	ruleRepo     rule.RuleRepository
	resolver     ShiftResolver
	hub          *events.Hub
	cfg          config.ReconcileConfig

	weekLocks *keyedMutex
}

func NewService(
	companyRepo company.CompanyRepository,
	employeeRepo employee.EmployeeRepository,
	eventRepo event.EventRepository,
	summaryRepo summary.SummaryRepository,
	ruleRepo rule.RuleRepository,
	resolver ShiftResolver,
	hub *events.Hub,
	cfg config.ReconcileConfig,
) *Service {
	return &Service{
		companyRepo:  companyRepo,
		employeeRepo: employeeRepo,
		eventRepo:    eventRepo,
		summaryRepo:  summaryRepo,
		ruleRepo:     ruleRepo,
		resolver:     resolver,
		hub:          hub,
		cfg:          cfg,
		weekLocks:    newKeyedMutex(),
	}
}

// ReconcileDay rebuilds the summary for one (company, employee, date)
// key and returns the stored result. Under a weekly overtime cap the
// whole ISO week up to the date is rebuilt in order, since any day's
// events can shift overtime attribution across the week.
func (s *Service) ReconcileDay(ctx context.Context, companyID, employeeID string, date time.Time) (summary.DailySummary, error) {
	comp, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return summary.DailySummary{}, fmt.Errorf("failed to get company: %w", err)
	}

	loc, err := time.LoadLocation(comp.Timezone)
	if err != nil {
		return summary.DailySummary{}, fmt.Errorf("invalid company timezone %q: %w", comp.Timezone, err)
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)

	attRule, err := s.currentRule(ctx, companyID)
	if err != nil {
		return summary.DailySummary{}, err
	}

	if attRule != nil && attRule.OvertimeMode == rule.OvertimeWeeklyCap {
		return s.reconcileWeek(ctx, companyID, employeeID, date, loc, attRule)
	}

	return s.reconcileOne(ctx, companyID, employeeID, date, loc, attRule)
}

// reconcileWeek rebuilds Monday through the target date under a
// per-(company, employee, week) lock. Cumulative worked minutes beyond
// cumulative expected minutes become overtime, attributed to the day
// that pushed the total over.
func (s *Service) reconcileWeek(ctx context.Context, companyID, employeeID string, date time.Time, loc *time.Location, attRule *rule.AttendanceRule) (summary.DailySummary, error) {
	weekStart := startOfISOWeek(date)
	unlock := s.weekLocks.Lock(weekKey(companyID, employeeID, weekStart))
	defer unlock()

	var (
		target      summary.DailySummary
		cumWorked   int
		cumExpected int
		cumOvertime int
	)
	for d := weekStart; !d.After(date); d = d.AddDate(0, 0, 1) {
		built, resolved, err := s.buildDay(ctx, companyID, employeeID, d, loc, attRule)
		if err != nil {
			return summary.DailySummary{}, err
		}

		cumWorked += built.WorkedMinutes
		if resolved != nil && resolved.Definition.Weekdays.ActiveOn(d.Weekday()) {
			cumExpected += resolved.Definition.ExpectedDailyMinutes
		}
		weekOvertime := cumWorked - cumExpected
		if weekOvertime < 0 {
			weekOvertime = 0
		}
		built.OvertimeMinutes = weekOvertime - cumOvertime
		if built.OvertimeMinutes < 0 {
			built.OvertimeMinutes = 0
		}
		cumOvertime += built.OvertimeMinutes

		stored, err := s.summaryRepo.Upsert(ctx, built)
		if err != nil {
			return summary.DailySummary{}, fmt.Errorf("failed to upsert daily summary: %w", err)
		}
		if d.Equal(date) {
			target = stored
		}
	}

	return target, nil
}

func (s *Service) reconcileOne(ctx context.Context, companyID, employeeID string, date time.Time, loc *time.Location, attRule *rule.AttendanceRule) (summary.DailySummary, error) {
	built, _, err := s.buildDay(ctx, companyID, employeeID, date, loc, attRule)
	if err != nil {
		return summary.DailySummary{}, err
	}

	stored, err := s.summaryRepo.Upsert(ctx, built)
	if err != nil {
		return summary.DailySummary{}, fmt.Errorf("failed to upsert daily summary: %w", err)
	}

	return stored, nil
}

// buildDay resolves the shift, loads the day's events and runs the
// pure fold. Overlapping assignments degrade to an unassigned day with
// a diagnostic rather than failing the whole rebuild.
func (s *Service) buildDay(ctx context.Context, companyID, employeeID string, date time.Time, loc *time.Location, attRule *rule.AttendanceRule) (summary.DailySummary, *shift.Resolved, error) {
	var (
		resolved *shift.Resolved
		overlap  string
	)
	res, err := s.resolver.Resolve(ctx, companyID, employeeID, date)
	switch {
	case err == nil:
		resolved = &res
	case errors.Is(err, shift.ErrUnassigned):
		// worked time still counts, lateness and overtime do not
	case errors.Is(err, shift.ErrOverlappingAssignment):
		overlap = err.Error()
	default:
		return summary.DailySummary{}, nil, fmt.Errorf("failed to resolve shift: %w", err)
	}

	dayStart := date
	dayEnd := dayStart.AddDate(0, 0, 1)
	evs, err := s.eventRepo.ListForEmployeeDay(ctx, employeeID, dayStart, dayEnd, companyID)
	if err != nil {
		return summary.DailySummary{}, nil, fmt.Errorf("failed to list events: %w", err)
	}

	built := BuildSummary(DayInput{
		CompanyID:  companyID,
		EmployeeID: employeeID,
		Date:       date,
		Location:   loc,
		Events:     evs,
		Shift:      resolved,
		Rule:       attRule,
	})
	if overlap != "" {
		built.Detail.Diagnostics = append(built.Detail.Diagnostics, overlap)
		built.Detail.Unassigned = true
	}

	return built, resolved, nil
}

// BatchResult reports a company-wide reconciliation run. Per-employee
// failures are collected rather than aborting the batch.
type BatchResult struct {
	CompanyID string             `json:"company_id"`
	Date      time.Time          `json:"date"`
	Processed int                `json:"processed"`
	Failures  []ReconcileFailure `json:"failures,omitempty"`
}

type ReconcileFailure struct {
	EmployeeID string `json:"employee_id"`
	Error      string `json:"error"`
}

// ReconcileCompanyDay rebuilds every active employee's summary for the
// date with a bounded worker pool. Each key gets its own timeout and a
// few retries with linear backoff before being recorded as a failure.
func (s *Service) ReconcileCompanyDay(ctx context.Context, companyID string, date time.Time) (BatchResult, error) {
	employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, companyID)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	result := BatchResult{CompanyID: companyID, Date: date}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for _, emp := range employees {
		empID := emp.ID
		g.Go(func() error {
			err := s.reconcileWithRetry(gctx, companyID, empID, date)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, ReconcileFailure{EmployeeID: empID, Error: err.Error()})
				return nil
			}
			result.Processed++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	slog.Info("Company reconciliation finished",
		"company_id", companyID,
		"date", date.Format("2006-01-02"),
		"processed", result.Processed,
		"failed", len(result.Failures))

	s.hub.Publish(events.Event{
		Kind:      events.KindDailySummaryReady,
		CompanyID: companyID,
		Payload:   result,
	})

	return result, nil
}

func (s *Service) reconcileWithRetry(ctx context.Context, companyID, employeeID string, date time.Time) error {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.RetryLimit; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * s.cfg.RetryBackoff
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		keyCtx, cancel := context.WithTimeout(ctx, s.cfg.PerKeyTimeout)
		_, err := s.ReconcileDay(keyCtx, companyID, employeeID, date)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("Reconciliation attempt failed",
			"company_id", companyID,
			"employee_id", employeeID,
			"attempt", attempt+1,
			"error", err)
	}
	return lastErr
}

// ListSummaries returns an employee's stored summaries for a date
// range.
func (s *Service) ListSummaries(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]summary.DailySummary, error) {
	return s.summaryRepo.ListForEmployeeRange(ctx, employeeID, from, to, companyID)
}

func (s *Service) currentRule(ctx context.Context, companyID string) (*rule.AttendanceRule, error) {
	r, err := s.ruleRepo.GetCurrentByCompanyID(ctx, companyID)
	if err != nil {
		if errors.Is(err, rule.ErrRuleNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance rule: %w", err)
	}
	return &r, nil
}

// startOfISOWeek returns the Monday of the date's ISO week, midnight in
// the date's location.
func startOfISOWeek(date time.Time) time.Time {
	offset := (int(date.Weekday()) + 6) % 7
	monday := date.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, date.Location())
}

func weekKey(companyID, employeeID string, weekStart time.Time) string {
	return companyID + "|" + employeeID + "|" + weekStart.Format("2006-01-02")
}
