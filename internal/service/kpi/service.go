package kpi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/employee"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/kpi"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/summary"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/events"
)

// Service evaluates configurable KPI formulas against attendance
// summaries and review scores, classifies compliance into severity
// tiers and stores the results.
type Service struct {
	employeeRepo   employee.EmployeeRepository
	summaryRepo    summary.SummaryRepository
	definitionRepo kpi.DefinitionRepository
	resultRepo     kpi.ResultRepository
	evaluationRepo kpi.EvaluationRepository
	hub            *events.Hub
}

func NewService(
	employeeRepo employee.EmployeeRepository,
	summaryRepo summary.SummaryRepository,
	definitionRepo kpi.DefinitionRepository,
	resultRepo kpi.ResultRepository,
	evaluationRepo kpi.EvaluationRepository,
	hub *events.Hub,
) *Service {
	return &Service{
		employeeRepo:   employeeRepo,
		summaryRepo:    summaryRepo,
		definitionRepo: definitionRepo,
		resultRepo:     resultRepo,
		evaluationRepo: evaluationRepo,
		hub:            hub,
	}
}

// Evaluate computes one KPI for one employee and period. A missing
// input or a division by zero yields an insufficient-data result with
// a nil value; a structurally invalid formula is a configuration error
// and fails the call.
func (s *Service) Evaluate(ctx context.Context, def kpi.Definition, companyID, employeeID, period string) (kpi.Result, error) {
	inputs, err := s.resolveInputs(ctx, def, companyID, employeeID, period)
	if err != nil {
		return kpi.Result{}, err
	}

	result := kpi.Result{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		EmployeeID: employeeID,
		KpiID:      def.ID,
		Period:     period,
		Detail:     inputs,
		ComputedAt: time.Now().UTC(),
	}

	value, err := def.Formula.Eval(inputs)
	if err != nil {
		if errors.Is(err, kpi.ErrMissingInput) || errors.Is(err, kpi.ErrDivideByZero) {
			result.InsufficientData = true
			return result, nil
		}
		return kpi.Result{}, fmt.Errorf("failed to evaluate kpi %s: %w", def.Code, err)
	}

	result.Value = &value
	if def.Target != 0 {
		compliance := value / def.Target * 100
		severity := kpi.Classify(compliance, def.GreenThreshold, def.YellowThreshold)
		result.CompliancePct = &compliance
		result.Severity = &severity
	}

	return result, nil
}

// BatchResult reports a company-wide KPI evaluation run.
type BatchResult struct {
	CompanyID string `json:"company_id"`
	Period    string `json:"period"`
	Evaluated int    `json:"evaluated"`
	RedCount  int    `json:"red_count"`
}

// EvaluateCompany evaluates every KPI definition for every active
// employee, upserts the results and publishes an event per red result.
func (s *Service) EvaluateCompany(ctx context.Context, companyID, period string) (BatchResult, error) {
	definitions, err := s.definitionRepo.ListByCompany(ctx, companyID)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to list kpi definitions: %w", err)
	}
	employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, companyID)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	batch := BatchResult{CompanyID: companyID, Period: period}
	for _, def := range definitions {
		for _, emp := range employees {
			result, err := s.Evaluate(ctx, def, companyID, emp.ID, period)
			if err != nil {
				return batch, err
			}

			stored, err := s.resultRepo.Upsert(ctx, result)
			if err != nil {
				return batch, fmt.Errorf("failed to upsert kpi result: %w", err)
			}
			batch.Evaluated++

			if stored.Severity != nil && *stored.Severity == kpi.SeverityRed {
				batch.RedCount++
				s.hub.Publish(events.Event{
					Kind:      events.KindKpiRed,
					CompanyID: companyID,
					Payload:   stored,
				})
			}
		}
	}

	slog.Info("KPI evaluation finished",
		"company_id", companyID,
		"period", period,
		"evaluated", batch.Evaluated,
		"red", batch.RedCount)

	return batch, nil
}

// Results returns the stored results for a company and period.
func (s *Service) Results(ctx context.Context, companyID, period string) ([]kpi.Result, error) {
	return s.resultRepo.ListByCompanyPeriod(ctx, companyID, period)
}
