package kpi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/employee"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/kpi"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/summary"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/events"
)

type fakeEmployeeRepo struct {
	employees []employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id && e.CompanyID == companyID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if e.CompanyID == companyID && e.Active() {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) CountActiveByCompanyID(ctx context.Context, companyID string) (int, error) {
	list, _ := f.GetActiveByCompanyID(ctx, companyID)
	return len(list), nil
}

type fakeSummaryRepo struct {
	summaries map[string][]summary.DailySummary // employeeID -> rows
}

func (f *fakeSummaryRepo) Upsert(ctx context.Context, s summary.DailySummary) (summary.DailySummary, error) {
	f.summaries[s.EmployeeID] = append(f.summaries[s.EmployeeID], s)
	return s, nil
}

func (f *fakeSummaryRepo) GetByKey(ctx context.Context, employeeID string, date time.Time, companyID string) (summary.DailySummary, error) {
	return summary.DailySummary{}, summary.ErrSummaryNotFound
}

func (f *fakeSummaryRepo) ListForEmployeeRange(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]summary.DailySummary, error) {
	var out []summary.DailySummary
	for _, s := range f.summaries[employeeID] {
		if !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSummaryRepo) ListForCompanyRange(ctx context.Context, companyID string, from, to time.Time) ([]summary.DailySummary, error) {
	var out []summary.DailySummary
	for _, rows := range f.summaries {
		out = append(out, rows...)
	}
	return out, nil
}

type fakeDefinitionRepo struct {
	definitions []kpi.Definition
}

func (f *fakeDefinitionRepo) GetByCode(ctx context.Context, code string, companyID string) (kpi.Definition, error) {
	for _, d := range f.definitions {
		if d.Code == code {
			return d, nil
		}
	}
	return kpi.Definition{}, kpi.ErrDefinitionNotFound
}

func (f *fakeDefinitionRepo) ListByCompany(ctx context.Context, companyID string) ([]kpi.Definition, error) {
	return f.definitions, nil
}

type fakeResultRepo struct {
	results []kpi.Result
}

func (f *fakeResultRepo) Upsert(ctx context.Context, r kpi.Result) (kpi.Result, error) {
	f.results = append(f.results, r)
	return r, nil
}

func (f *fakeResultRepo) ListByCompanyPeriod(ctx context.Context, companyID, period string) ([]kpi.Result, error) {
	return f.results, nil
}

type fakeEvaluationRepo struct {
	scores map[string]float64 // employeeID -> score
}

func (f *fakeEvaluationRepo) GetScore(ctx context.Context, employeeID, period, companyID string) (float64, bool, error) {
	score, ok := f.scores[employeeID]
	return score, ok, nil
}

func exprLit(v float64) *kpi.Expr { return &kpi.Expr{Lit: &v} }

// attendanceRateDef measures (days_complete / days_total) * 100 against a
// 100% target with green at 95 and yellow at 80.
func attendanceRateDef() kpi.Definition {
	return kpi.Definition{
		ID:     "kpi-1",
		Code:   "attendance_rate",
		Source: kpi.SourceAttendance,
		Formula: kpi.Expr{
			Op: "*",
			Left: &kpi.Expr{
				Op:    "/",
				Left:  &kpi.Expr{Ref: RefDaysComplete},
				Right: &kpi.Expr{Ref: RefDaysTotal},
			},
			Right: exprLit(100),
		},
		Target:          100,
		GreenThreshold:  95,
		YellowThreshold: 80,
	}
}

func marchDay(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func newKpiFixture(completeDays, totalDays int) (*Service, *fakeResultRepo, *events.Hub) {
	summaryRepo := &fakeSummaryRepo{summaries: make(map[string][]summary.DailySummary)}
	for i := 0; i < totalDays; i++ {
		status := summary.StatusIncomplete
		if i < completeDays {
			status = summary.StatusComplete
		}
		summaryRepo.summaries["emp-1"] = append(summaryRepo.summaries["emp-1"], summary.DailySummary{
			CompanyID:  "co-1",
			EmployeeID: "emp-1",
			Date:       marchDay(2 + i),
			Status:     status,
		})
	}

	resultRepo := &fakeResultRepo{}
	hub := events.NewHub()
	svc := NewService(
		&fakeEmployeeRepo{employees: []employee.Employee{
			{ID: "emp-1", CompanyID: "co-1", FullName: "Ana", Status: employee.StatusActive},
		}},
		summaryRepo,
		&fakeDefinitionRepo{definitions: []kpi.Definition{attendanceRateDef()}},
		resultRepo,
		&fakeEvaluationRepo{scores: map[string]float64{}},
		hub,
	)
	return svc, resultRepo, hub
}

func TestEvaluateClassifiesGreen(t *testing.T) {
	svc, _, _ := newKpiFixture(19, 20)

	result, err := svc.Evaluate(context.Background(), attendanceRateDef(), "co-1", "emp-1", "2026-03")

	require.NoError(t, err)
	require.NotNil(t, result.Value)
	assert.InDelta(t, 95.0, *result.Value, 0.001)
	require.NotNil(t, result.CompliancePct)
	assert.InDelta(t, 95.0, *result.CompliancePct, 0.001)
	require.NotNil(t, result.Severity)
	assert.Equal(t, kpi.SeverityGreen, *result.Severity)
	assert.False(t, result.InsufficientData)
	assert.Equal(t, 20.0, result.Detail[RefDaysTotal])
}

func TestEvaluateClassifiesRed(t *testing.T) {
	svc, _, _ := newKpiFixture(10, 20)

	result, err := svc.Evaluate(context.Background(), attendanceRateDef(), "co-1", "emp-1", "2026-03")

	require.NoError(t, err)
	require.NotNil(t, result.Severity)
	assert.Equal(t, kpi.SeverityRed, *result.Severity)
}

func TestEvaluateEmptyPeriodIsInsufficientData(t *testing.T) {
	svc, _, _ := newKpiFixture(0, 0)

	result, err := svc.Evaluate(context.Background(), attendanceRateDef(), "co-1", "emp-1", "2026-03")

	require.NoError(t, err)
	assert.True(t, result.InsufficientData)
	assert.Nil(t, result.Value)
	assert.Nil(t, result.Severity)
}

func TestEvaluateMissingEvaluationScore(t *testing.T) {
	svc, _, _ := newKpiFixture(5, 5)
	def := kpi.Definition{
		ID:      "kpi-2",
		Code:    "review_score",
		Source:  kpi.SourceEvaluation,
		Formula: kpi.Expr{Ref: RefEvaluationScore},
		Target:  100,
	}

	result, err := svc.Evaluate(context.Background(), def, "co-1", "emp-1", "2026-03")

	require.NoError(t, err)
	assert.True(t, result.InsufficientData)
	assert.Nil(t, result.Value)
}

func TestEvaluateInvalidFormulaFails(t *testing.T) {
	svc, _, _ := newKpiFixture(5, 5)
	def := kpi.Definition{
		ID:      "kpi-3",
		Code:    "broken",
		Formula: kpi.Expr{Op: "^", Left: exprLit(2), Right: exprLit(3)},
		Target:  100,
	}

	_, err := svc.Evaluate(context.Background(), def, "co-1", "emp-1", "2026-03")

	assert.ErrorIs(t, err, kpi.ErrInvalidFormula)
}

func TestEvaluateZeroTargetSkipsCompliance(t *testing.T) {
	svc, _, _ := newKpiFixture(5, 5)
	def := attendanceRateDef()
	def.Target = 0

	result, err := svc.Evaluate(context.Background(), def, "co-1", "emp-1", "2026-03")

	require.NoError(t, err)
	require.NotNil(t, result.Value)
	assert.Nil(t, result.CompliancePct)
	assert.Nil(t, result.Severity)
}

func TestEvaluateCompanyPublishesRed(t *testing.T) {
	svc, resultRepo, hub := newKpiFixture(10, 20)

	ch, cleanup := hub.Subscribe(events.KindKpiRed)
	defer cleanup()

	batch, err := svc.EvaluateCompany(context.Background(), "co-1", "2026-03")

	require.NoError(t, err)
	assert.Equal(t, 1, batch.Evaluated)
	assert.Equal(t, 1, batch.RedCount)
	require.Len(t, resultRepo.results, 1)

	select {
	case got := <-ch:
		assert.Equal(t, "co-1", got.CompanyID)
		stored, ok := got.Payload.(kpi.Result)
		require.True(t, ok)
		assert.Equal(t, kpi.SeverityRed, *stored.Severity)
	default:
		t.Fatal("expected a kpi_red event")
	}
}

func TestEvaluateCompanyGreenStaysQuiet(t *testing.T) {
	svc, resultRepo, hub := newKpiFixture(20, 20)

	ch, cleanup := hub.Subscribe(events.KindKpiRed)
	defer cleanup()

	batch, err := svc.EvaluateCompany(context.Background(), "co-1", "2026-03")

	require.NoError(t, err)
	assert.Equal(t, 1, batch.Evaluated)
	assert.Zero(t, batch.RedCount)
	require.Len(t, resultRepo.results, 1)

	select {
	case <-ch:
		t.Fatal("unexpected kpi_red event for a green result")
	default:
	}
}
