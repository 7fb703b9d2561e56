package normalizer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/employee"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/event"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/rule"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/shift"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/geo"
)

var (
	empID    = "11111111-1111-4111-8111-111111111111"
	goneID   = "22222222-2222-4222-8222-222222222222"
	strayID  = "33333333-3333-4333-8333-333333333333"
	fenceID  = "cccccccc-cccc-4ccc-8ccc-cccccccccccc"
	deviceID = "reader-hq-01"
)

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	e, ok := f.employees[id]
	if !ok || e.CompanyID != companyID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployeeRepo) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepo) CountActiveByCompanyID(ctx context.Context, companyID string) (int, error) {
	return 0, nil
}

type fakeEventRepo struct {
	devices map[string]bool
	stored  []event.Normalized
}

func (f *fakeEventRepo) CreateWithNormalization(ctx context.Context, ev event.Event, norm event.Normalization) (event.Normalized, error) {
	out := event.Normalized{Event: ev, Normalization: norm}
	out.Seq = int64(len(f.stored) + 1)
	f.stored = append(f.stored, out)
	return out, nil
}

func (f *fakeEventRepo) ListForEmployeeDay(ctx context.Context, employeeID string, dayStart, dayEnd time.Time, companyID string) ([]event.Normalized, error) {
	return nil, nil
}

func (f *fakeEventRepo) ListForCompanyWindow(ctx context.Context, companyID string, from, to time.Time) ([]event.Normalized, error) {
	return nil, nil
}

func (f *fakeEventRepo) DeviceExists(ctx context.Context, deviceID string, companyID string) (bool, error) {
	return f.devices[deviceID], nil
}

type fakeRuleRepo struct {
	rule *rule.AttendanceRule
}

func (f *fakeRuleRepo) GetCurrentByCompanyID(ctx context.Context, companyID string) (rule.AttendanceRule, error) {
	if f.rule == nil {
		return rule.AttendanceRule{}, rule.ErrRuleNotFound
	}
	return *f.rule, nil
}

type fakeGeofenceRepo struct {
	fences map[string]rule.Geofence
}

func (f *fakeGeofenceRepo) GetByID(ctx context.Context, id string, companyID string) (rule.Geofence, error) {
	g, ok := f.fences[id]
	if !ok {
		return rule.Geofence{}, rule.ErrGeofenceNotFound
	}
	return g, nil
}

type fakeResolver struct {
	resolved shift.Resolved
	err      error
}

func (f *fakeResolver) Resolve(ctx context.Context, companyID, employeeID string, date time.Time) (shift.Resolved, error) {
	return f.resolved, f.err
}

type normalizerFixture struct {
	svc       *Service
	eventRepo *fakeEventRepo
	ruleRepo  *fakeRuleRepo
	resolver  *fakeResolver
}

func newFixture() *normalizerFixture {
	eventRepo := &fakeEventRepo{devices: map[string]bool{deviceID: true}}
	ruleRepo := &fakeRuleRepo{rule: &rule.AttendanceRule{
		ID:         "rule-1",
		CompanyID:  "co-1",
		GeofenceID: &fenceID,
		AllowedIPs: rule.AllowedIPs{"10.0.0.0/8"},
	}}
	resolver := &fakeResolver{resolved: shift.Resolved{
		Definition: shift.Definition{ID: "shift-1", RequiresPhoto: true},
	}}

	svc := NewService(
		&fakeEmployeeRepo{employees: map[string]employee.Employee{
			empID:  {ID: empID, CompanyID: "co-1", Status: employee.StatusActive},
			goneID: {ID: goneID, CompanyID: "co-1", Status: employee.StatusRetired},
		}},
		eventRepo,
		ruleRepo,
		&fakeGeofenceRepo{fences: map[string]rule.Geofence{
			fenceID: {ID: fenceID, Coordinates: rule.GeofenceShape{
				Center:  &geo.Point{Lat: -6.1754, Lng: 106.8272},
				RadiusM: 500,
			}},
		}},
		resolver,
	)

	return &normalizerFixture{svc: svc, eventRepo: eventRepo, ruleRepo: ruleRepo, resolver: resolver}
}

func checkInReq(lat, lng *float64) *event.IngestRequest {
	photo := "photos/abc.jpg"
	return &event.IngestRequest{
		EmployeeID: empID,
		Kind:       "check_in",
		Source:     "app",
		RecordedAt: "2026-03-10T08:55:00Z",
		Latitude:   lat,
		Longitude:  lng,
		PhotoRef:   &photo,
	}
}

func ptr(v float64) *float64 { return &v }

func TestIngestInsideGeofence(t *testing.T) {
	fx := newFixture()

	stored, err := fx.svc.Ingest(context.Background(), "co-1", checkInReq(ptr(-6.1756), ptr(106.8274)), "10.1.2.3")

	require.NoError(t, err)
	assert.Equal(t, rule.ContainmentInside, stored.WithinGeofence)
	assert.False(t, stored.MissingGPS)
	assert.False(t, stored.MissingPhoto)
	assert.True(t, stored.IPAllowed)
	assert.Equal(t, event.KindCheckIn, stored.Kind)
	assert.Equal(t, time.Date(2026, 3, 10, 8, 55, 0, 0, time.UTC), stored.RecordedAt)
}

func TestIngestOutsideGeofenceIsFlaggedNotRejected(t *testing.T) {
	fx := newFixture()

	stored, err := fx.svc.Ingest(context.Background(), "co-1", checkInReq(ptr(-6.3), ptr(106.9)), "10.1.2.3")

	require.NoError(t, err)
	assert.Equal(t, rule.ContainmentOutside, stored.WithinGeofence)
}

func TestIngestMissingGPSWhenFenceConfigured(t *testing.T) {
	fx := newFixture()

	stored, err := fx.svc.Ingest(context.Background(), "co-1", checkInReq(nil, nil), "10.1.2.3")

	require.NoError(t, err)
	assert.Equal(t, rule.ContainmentUnknown, stored.WithinGeofence)
	assert.True(t, stored.MissingGPS)
}

func TestIngestMissingPhoto(t *testing.T) {
	fx := newFixture()
	req := checkInReq(ptr(-6.1756), ptr(106.8274))
	req.PhotoRef = nil

	stored, err := fx.svc.Ingest(context.Background(), "co-1", req, "10.1.2.3")

	require.NoError(t, err)
	assert.True(t, stored.MissingPhoto)
}

func TestIngestDeniedIPIsFlagged(t *testing.T) {
	fx := newFixture()

	stored, err := fx.svc.Ingest(context.Background(), "co-1", checkInReq(ptr(-6.1756), ptr(106.8274)), "203.0.113.9")

	require.NoError(t, err)
	assert.False(t, stored.IPAllowed)
}

func TestIngestNoRuleDegradesPermissively(t *testing.T) {
	fx := newFixture()
	fx.ruleRepo.rule = nil

	stored, err := fx.svc.Ingest(context.Background(), "co-1", checkInReq(ptr(-6.1756), ptr(106.8274)), "203.0.113.9")

	require.NoError(t, err)
	assert.Equal(t, rule.ContainmentUnknown, stored.WithinGeofence)
	assert.True(t, stored.IPAllowed)
	assert.False(t, stored.MissingGPS)
}

func TestIngestUnassignedShiftStillRecords(t *testing.T) {
	fx := newFixture()
	fx.resolver.err = shift.ErrUnassigned
	fx.resolver.resolved = shift.Resolved{}

	stored, err := fx.svc.Ingest(context.Background(), "co-1", checkInReq(ptr(-6.1756), ptr(106.8274)), "10.1.2.3")

	require.NoError(t, err)
	// No shift means no photo requirement.
	assert.False(t, stored.MissingPhoto)
}

func TestIngestUnknownEmployee(t *testing.T) {
	fx := newFixture()
	req := checkInReq(nil, nil)
	req.EmployeeID = strayID

	_, err := fx.svc.Ingest(context.Background(), "co-1", req, "")

	assert.ErrorIs(t, err, event.ErrUnknownEmployee)
	assert.Empty(t, fx.eventRepo.stored)
}

func TestIngestRetiredEmployee(t *testing.T) {
	fx := newFixture()
	req := checkInReq(nil, nil)
	req.EmployeeID = goneID

	_, err := fx.svc.Ingest(context.Background(), "co-1", req, "")

	assert.ErrorIs(t, err, employee.ErrEmployeeRetired)
}

func TestIngestUnknownDevice(t *testing.T) {
	fx := newFixture()
	req := checkInReq(nil, nil)
	unknown := "reader-unknown"
	req.DeviceID = &unknown

	_, err := fx.svc.Ingest(context.Background(), "co-1", req, "")

	assert.ErrorIs(t, err, event.ErrUnknownDevice)
}

func TestIngestValidationRejects(t *testing.T) {
	fx := newFixture()

	tests := []struct {
		name   string
		mutate func(*event.IngestRequest)
	}{
		{"bad kind", func(r *event.IngestRequest) { r.Kind = "lunch" }},
		{"bad source", func(r *event.IngestRequest) { r.Source = "fax" }},
		{"bad timestamp", func(r *event.IngestRequest) { r.RecordedAt = "yesterday" }},
		{"lone latitude", func(r *event.IngestRequest) { r.Longitude = nil }},
		{"latitude out of range", func(r *event.IngestRequest) { r.Latitude = ptr(99) }},
		{"bad employee id", func(r *event.IngestRequest) { r.EmployeeID = "emp-1" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := checkInReq(ptr(-6.1756), ptr(106.8274))
			tt.mutate(req)

			_, err := fx.svc.Ingest(context.Background(), "co-1", req, "")

			assert.Error(t, err)
		})
	}
	assert.Empty(t, fx.eventRepo.stored)
}
