package event

import (
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/validator"
)

// IngestRequest is the payload for recording an attendance event.
// RecordedAt is optional; the server assigns its own clock when absent.
type IngestRequest struct {
	EmployeeID string   `json:"employee_id"`
	Kind       string   `json:"type"`
	Source     string   `json:"source"`
	RecordedAt string   `json:"recorded_at,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
	DeviceID   *string  `json:"device_id,omitempty"`
	PhotoRef   *string  `json:"photo_ref,omitempty"`
}

// Validate validates the ingest request fields
func (r *IngestRequest) Validate() validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	} else if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id must be a valid UUID"})
	}

	if !Kind(r.Kind).Valid() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type must be one of: check_in, check_out, pause_in, pause_out"})
	}

	if !Source(r.Source).Valid() {
		errs = append(errs, validator.ValidationError{Field: "source", Message: "source must be one of: app, web, reader"})
	}

	if r.RecordedAt != "" {
		if _, ok := validator.IsValidDateTime(r.RecordedAt); !ok {
			errs = append(errs, validator.ValidationError{Field: "recorded_at", Message: "recorded_at must be an RFC3339 timestamp"})
		}
	}

	// Coordinates come as a pair or not at all.
	if (r.Latitude == nil) != (r.Longitude == nil) {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "latitude and longitude must be provided together"})
	}
	if r.Latitude != nil && !validator.IsValidLatitude(*r.Latitude) {
		errs = append(errs, validator.ValidationError{Field: "latitude", Message: "latitude must be between -90 and 90"})
	}
	if r.Longitude != nil && !validator.IsValidLongitude(*r.Longitude) {
		errs = append(errs, validator.ValidationError{Field: "longitude", Message: "longitude must be between -180 and 180"})
	}

	return errs
}

// IngestResponse echoes the stored event with its normalization tags.
type IngestResponse struct {
	ID             string   `json:"id"`
	EmployeeID     string   `json:"employee_id"`
	Kind           string   `json:"type"`
	Source         string   `json:"source"`
	RecordedAt     string   `json:"recorded_at"`
	WithinGeofence string   `json:"within_geofence"`
	MissingGPS     bool     `json:"missing_gps"`
	MissingPhoto   bool     `json:"missing_photo"`
	IPAllowed      bool     `json:"ip_allowed"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
}
