package normalizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/employee"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/event"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/rule"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/shift"
)

// ShiftResolver resolves the applicable shift for policy tagging.
type ShiftResolver interface {
	Resolve(ctx context.Context, companyID, employeeID string, date time.Time) (shift.Resolved, error)
}

// Service validates incoming attendance events, derives policy tags
// and stores both in one transaction. Structural faults reject the
// event; policy gaps only flag it.
type Service struct {
	employeeRepo employee.EmployeeRepository
	eventRepo    event.EventRepository
	ruleRepo     rule.RuleRepository
	geofenceRepo rule.GeofenceRepository
	resolver     ShiftResolver
}

func NewService(
	employeeRepo employee.EmployeeRepository,
	eventRepo event.EventRepository,
	ruleRepo rule.RuleRepository,
	geofenceRepo rule.GeofenceRepository,
	resolver ShiftResolver,
) *Service {
	return &Service{
		employeeRepo: employeeRepo,
		eventRepo:    eventRepo,
		ruleRepo:     ruleRepo,
		geofenceRepo: geofenceRepo,
		resolver:     resolver,
	}
}

// Ingest validates and stores one attendance event. clientIP is the
// remote address the transport saw, used for the allow-list tag.
func (s *Service) Ingest(ctx context.Context, companyID string, req *event.IngestRequest, clientIP string) (event.Normalized, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return event.Normalized{}, errs
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return event.Normalized{}, event.ErrUnknownEmployee
		}
		return event.Normalized{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.Active() {
		return event.Normalized{}, employee.ErrEmployeeRetired
	}

	if req.DeviceID != nil && *req.DeviceID != "" {
		exists, err := s.eventRepo.DeviceExists(ctx, *req.DeviceID, companyID)
		if err != nil {
			return event.Normalized{}, fmt.Errorf("failed to check device: %w", err)
		}
		if !exists {
			return event.Normalized{}, event.ErrUnknownDevice
		}
	}

	recordedAt := time.Now().UTC()
	if req.RecordedAt != "" {
		// Validate() already proved the format.
		recordedAt, _ = time.Parse(time.RFC3339, req.RecordedAt)
		recordedAt = recordedAt.UTC()
	}

	ev := event.Event{
		ID:         uuid.New().String(),
		CompanyID:  companyID,
		EmployeeID: req.EmployeeID,
		Kind:       event.Kind(req.Kind),
		RecordedAt: recordedAt,
		Source:     event.Source(req.Source),
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		DeviceID:   req.DeviceID,
		PhotoRef:   req.PhotoRef,
	}
	if clientIP != "" {
		ev.ClientIP = &clientIP
	}

	norm, err := s.normalize(ctx, ev)
	if err != nil {
		return event.Normalized{}, err
	}

	stored, err := s.eventRepo.CreateWithNormalization(ctx, ev, norm)
	if err != nil {
		return event.Normalized{}, fmt.Errorf("failed to store event: %w", err)
	}

	return stored, nil
}

// normalize derives the policy tags for the event. Every lookup
// failure short of a real error degrades to the permissive tag so a
// misconfigured policy never blocks attendance capture.
func (s *Service) normalize(ctx context.Context, ev event.Event) (event.Normalization, error) {
	norm := event.Normalization{
		EventID:        ev.ID,
		WithinGeofence: rule.ContainmentUnknown,
		IPAllowed:      true,
		NormalizedAt:   time.Now().UTC(),
	}

	attRule, err := s.currentRule(ctx, ev.CompanyID)
	if err != nil {
		return event.Normalization{}, err
	}

	var resolved *shift.Resolved
	res, err := s.resolver.Resolve(ctx, ev.CompanyID, ev.EmployeeID, ev.RecordedAt)
	switch {
	case err == nil:
		resolved = &res
	case errors.Is(err, shift.ErrUnassigned), errors.Is(err, shift.ErrOverlappingAssignment):
		// tagging proceeds without shift-level requirements
	default:
		return event.Normalization{}, fmt.Errorf("failed to resolve shift: %w", err)
	}

	var fence *rule.Geofence
	if attRule != nil && attRule.GeofenceID != nil {
		g, err := s.geofenceRepo.GetByID(ctx, *attRule.GeofenceID, ev.CompanyID)
		if err != nil {
			if !errors.Is(err, rule.ErrGeofenceNotFound) {
				return event.Normalization{}, fmt.Errorf("failed to get geofence: %w", err)
			}
		} else {
			fence = &g
		}
	}

	norm.WithinGeofence = fence.Contains(ev.Latitude, ev.Longitude)

	hasGPS := ev.Latitude != nil && ev.Longitude != nil
	requiresGPS := fence != nil || (resolved != nil && resolved.Definition.RequiresGPS)
	norm.MissingGPS = requiresGPS && !hasGPS

	if resolved != nil && resolved.Definition.RequiresPhoto {
		norm.MissingPhoto = ev.PhotoRef == nil || *ev.PhotoRef == ""
	}

	if attRule != nil {
		ip := ""
		if ev.ClientIP != nil {
			ip = *ev.ClientIP
		}
		norm.IPAllowed = attRule.AllowedIPs.Allows(ip)
	}

	return norm, nil
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
