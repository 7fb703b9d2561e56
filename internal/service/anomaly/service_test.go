package anomaly

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/company"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/employee"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/event"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/leave"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/rule"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/summary"
)

var (
	reportToday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	reportFrom  = reportToday.AddDate(0, 0, -7)
)

func normalizedEv(within rule.Containment, missingGPS, ipAllowed bool) event.Normalized {
	return event.Normalized{
		Event: event.Event{CompanyID: "co-1", EmployeeID: "emp-1", Kind: event.KindCheckIn},
		Normalization: event.Normalization{
			WithinGeofence: within,
			MissingGPS:     missingGPS,
			IPAllowed:      ipAllowed,
		},
	}
}

func daySummary(employeeID string, date time.Time, status summary.Status, late int) summary.DailySummary {
	return summary.DailySummary{
		CompanyID:   "co-1",
		EmployeeID:  employeeID,
		Date:        date,
		Status:      status,
		LateMinutes: late,
	}
}

func TestBuildReportCountsEventFlags(t *testing.T) {
	report := BuildReport(ReportInput{
		CompanyID: "co-1",
		From:      reportFrom,
		Today:     reportToday,
		Events: []event.Normalized{
			normalizedEv(rule.ContainmentOutside, false, true),
			normalizedEv(rule.ContainmentOutside, true, false),
			normalizedEv(rule.ContainmentInside, false, true),
			normalizedEv(rule.ContainmentUnknown, true, true),
		},
	})

	assert.Equal(t, 2, report.OutOfGeofenceCount)
	assert.Equal(t, 2, report.MissingGPSCount)
	assert.Equal(t, 1, report.IPDeniedCount)
}

func TestBuildReportIncompleteToday(t *testing.T) {
	employees := []employee.Employee{
		{ID: "emp-1", FullName: "Ana"},
		{ID: "emp-2", FullName: "Bruno"},
		{ID: "emp-3", FullName: "Carla"},
		{ID: "emp-4", FullName: "Diego"},
	}

	report := BuildReport(ReportInput{
		CompanyID: "co-1",
		From:      reportFrom,
		Today:     reportToday,
		Employees: employees,
		Summaries: []summary.DailySummary{
			daySummary("emp-1", reportToday, summary.StatusComplete, 0),
			daySummary("emp-2", reportToday, summary.StatusIncomplete, 0),
			// emp-3 has no summary for today at all.
			daySummary("emp-3", reportToday.AddDate(0, 0, -1), summary.StatusComplete, 0),
		},
		OnLeave: map[string]bool{"emp-4": true},
	})

	require.Len(t, report.IncompleteToday, 2)
	assert.Equal(t, "Bruno", report.IncompleteToday[0].EmployeeName)
	assert.Equal(t, summary.StatusIncomplete, report.IncompleteToday[0].Status)
	assert.Equal(t, "Carla", report.IncompleteToday[1].EmployeeName)
	assert.Equal(t, summary.StatusNoRecords, report.IncompleteToday[1].Status)
}

func TestBuildReportTopTardinessRankedAndCapped(t *testing.T) {
	var employees []employee.Employee
	var summaries []summary.DailySummary
	for i := 1; i <= 7; i++ {
		id := fmt.Sprintf("emp-%d", i)
		employees = append(employees, employee.Employee{ID: id, FullName: id})
		// emp-1 is latest overall, emp-7 never late.
		if i < 7 {
			summaries = append(summaries,
				daySummary(id, reportFrom, summary.StatusComplete, 10*(8-i)),
				daySummary(id, reportToday, summary.StatusComplete, 5),
			)
		}
	}

	report := BuildReport(ReportInput{
		CompanyID: "co-1",
		From:      reportFrom,
		Today:     reportToday,
		Employees: employees,
		Summaries: summaries,
	})

	require.Len(t, report.TopTardiness, topTardinessLimit)
	assert.Equal(t, "emp-1", report.TopTardiness[0].EmployeeID)
	assert.Equal(t, 75, report.TopTardiness[0].LateMinutes)
	assert.Equal(t, 2, report.TopTardiness[0].LateDays)
	assert.Equal(t, "emp-5", report.TopTardiness[4].EmployeeID)
}

func TestBuildReportTardinessTieBreaksByEmployeeID(t *testing.T) {
	report := BuildReport(ReportInput{
		CompanyID: "co-1",
		From:      reportFrom,
		Today:     reportToday,
		Employees: []employee.Employee{
			{ID: "emp-b", FullName: "B"},
			{ID: "emp-a", FullName: "A"},
		},
		Summaries: []summary.DailySummary{
			daySummary("emp-b", reportToday, summary.StatusComplete, 30),
			daySummary("emp-a", reportToday, summary.StatusComplete, 30),
		},
	})

	require.Len(t, report.TopTardiness, 2)
	assert.Equal(t, "emp-a", report.TopTardiness[0].EmployeeID)
	assert.Equal(t, "emp-b", report.TopTardiness[1].EmployeeID)
}

func TestBuildReportEmptyWindow(t *testing.T) {
	report := BuildReport(ReportInput{
		CompanyID: "co-1",
		From:      reportFrom,
		Today:     reportToday,
	})

	assert.Zero(t, report.OutOfGeofenceCount)
	assert.Empty(t, report.IncompleteToday)
	assert.Empty(t, report.TopTardiness)
}

type fakeCompanyRepo struct {
	companies map[string]company.Company
}

func (f *fakeCompanyRepo) GetByID(ctx context.Context, id string) (company.Company, error) {
	c, ok := f.companies[id]
	if !ok {
		return company.Company{}, company.ErrCompanyNotFound
	}
	return c, nil
}

func (f *fakeCompanyRepo) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range f.companies {
		ids = append(ids, id)
	}
	return ids, nil
}

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

type fakeEventRepo struct {
	events []event.Normalized
}

func (f *fakeEventRepo) CreateWithNormalization(ctx context.Context, ev event.Event, norm event.Normalization) (event.Normalized, error) {
	out := event.Normalized{Event: ev, Normalization: norm}
	f.events = append(f.events, out)
	return out, nil
}

func (f *fakeEventRepo) ListForEmployeeDay(ctx context.Context, employeeID string, dayStart, dayEnd time.Time, companyID string) ([]event.Normalized, error) {
	return nil, nil
}

func (f *fakeEventRepo) ListForCompanyWindow(ctx context.Context, companyID string, from, to time.Time) ([]event.Normalized, error) {
	return f.events, nil
}

func (f *fakeEventRepo) DeviceExists(ctx context.Context, deviceID string, companyID string) (bool, error) {
	return false, nil
}

type fakeSummaryRepo struct {
	summaries []summary.DailySummary
}

func (f *fakeSummaryRepo) Upsert(ctx context.Context, s summary.DailySummary) (summary.DailySummary, error) {
	f.summaries = append(f.summaries, s)
	return s, nil
}

func (f *fakeSummaryRepo) GetByKey(ctx context.Context, employeeID string, date time.Time, companyID string) (summary.DailySummary, error) {
	return summary.DailySummary{}, summary.ErrSummaryNotFound
}

func (f *fakeSummaryRepo) ListForEmployeeRange(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]summary.DailySummary, error) {
	return nil, nil
}

func (f *fakeSummaryRepo) ListForCompanyRange(ctx context.Context, companyID string, from, to time.Time) ([]summary.DailySummary, error) {
	return f.summaries, nil
}

type fakeLeaveRepo struct {
	coveredEmployees map[string]bool
}

func (f *fakeLeaveRepo) Create(ctx context.Context, tx pgx.Tx, req leave.Request) (leave.Request, error) {
	return req, nil
}

func (f *fakeLeaveRepo) GetByID(ctx context.Context, id string, companyID string) (leave.Request, error) {
	return leave.Request{}, leave.ErrRequestNotFound
}

func (f *fakeLeaveRepo) ListByCompany(ctx context.Context, companyID string, status *leave.RequestStatus) ([]leave.Request, error) {
	return nil, nil
}

func (f *fakeLeaveRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, req leave.Request) error {
	return nil
}

func (f *fakeLeaveRepo) HasApprovedFullDayCovering(ctx context.Context, employeeID string, date time.Time, companyID string) (bool, error) {
	return f.coveredEmployees[employeeID], nil
}

// Summaries are keyed to the company-local date, so an evening in Lima
// that is already the next day in UTC must still resolve to the Lima
// calendar day.
func TestDetectUsesCompanyLocalDay(t *testing.T) {
	lima, err := time.LoadLocation("America/Lima")
	require.NoError(t, err)
	limaDay := time.Date(2026, 3, 9, 0, 0, 0, 0, lima)

	svc := NewService(
		&fakeCompanyRepo{companies: map[string]company.Company{
			"co-1": {ID: "co-1", Name: "Andes", Timezone: "America/Lima"},
		}},
		&fakeEmployeeRepo{employees: []employee.Employee{
			{ID: "emp-1", CompanyID: "co-1", FullName: "Ana", Status: employee.StatusActive},
			{ID: "emp-2", CompanyID: "co-1", FullName: "Bruno", Status: employee.StatusActive},
		}},
		&fakeEventRepo{},
		&fakeSummaryRepo{summaries: []summary.DailySummary{
			daySummary("emp-1", limaDay, summary.StatusComplete, 0),
		}},
		&fakeLeaveRepo{},
	)

	// 01:00 UTC on March 10 is still 20:00 on March 9 in Lima.
	now := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	report, err := svc.Detect(context.Background(), "co-1", now, 7)

	require.NoError(t, err)
	assert.True(t, report.To.Equal(limaDay), "report day should be the Lima calendar date")

	// emp-1 has a complete summary for the current Lima day; only emp-2
	// is missing records.
	require.Len(t, report.IncompleteToday, 1)
	assert.Equal(t, "emp-2", report.IncompleteToday[0].EmployeeID)
	assert.Equal(t, summary.StatusNoRecords, report.IncompleteToday[0].Status)
}

func TestDetectExcludesApprovedLeave(t *testing.T) {
	lima, err := time.LoadLocation("America/Lima")
	require.NoError(t, err)

	svc := NewService(
		&fakeCompanyRepo{companies: map[string]company.Company{
			"co-1": {ID: "co-1", Name: "Andes", Timezone: "America/Lima"},
		}},
		&fakeEmployeeRepo{employees: []employee.Employee{
			{ID: "emp-1", CompanyID: "co-1", FullName: "Ana", Status: employee.StatusActive},
		}},
		&fakeEventRepo{},
		&fakeSummaryRepo{},
		&fakeLeaveRepo{coveredEmployees: map[string]bool{"emp-1": true}},
	)

	now := time.Date(2026, 3, 9, 15, 0, 0, 0, lima)
	report, err := svc.Detect(context.Background(), "co-1", now, 7)

	require.NoError(t, err)
	assert.Empty(t, report.IncompleteToday)
}
