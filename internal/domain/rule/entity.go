package rule

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/pkg/geo"
)

// OvertimeMode selects how overtime minutes are capped.
type OvertimeMode string

const (
	OvertimeDailyCap  OvertimeMode = "daily-cap"
	OvertimeWeeklyCap OvertimeMode = "weekly-cap"
)

// AttendanceRule is the per-company attendance policy. It is threaded
// explicitly through normalization and reconciliation calls so those
// computations stay pure and testable.
type AttendanceRule struct {
	ID                    string
	CompanyID             string
	TardinessThresholdMin int
	OvertimeMode          OvertimeMode
	GeofenceID            *string
	AllowedIPs            AllowedIPs
	CreatedAt             time.Time
}

// AllowedIPs is a set of exact IPs and CIDR blocks, stored as JSONB.
type AllowedIPs []string

// Allows reports whether the client IP matches the allow list.
// An empty list allows everything.
func (a AllowedIPs) Allows(clientIP string) bool {
	if len(a) == 0 {
		return true
	}
	ip := net.ParseIP(strings.TrimSpace(clientIP))
	if ip == nil {
		return false
	}
	for _, item := range a {
		s := strings.TrimSpace(item)
		if s == "" {
			continue
		}
		if strings.Contains(s, "/") {
			if _, network, err := net.ParseCIDR(s); err == nil && network.Contains(ip) {
				return true
			}
			continue
		}
		if allowed := net.ParseIP(s); allowed != nil && allowed.Equal(ip) {
			return true
		}
	}
	return false
}

// Value implements driver.Valuer for database storage
func (a AllowedIPs) Value() (driver.Value, error) {
	if len(a) == 0 {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner for database retrieval
func (a *AllowedIPs) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan AllowedIPs: invalid type")
	}
	return json.Unmarshal(bytes, a)
}

// Geofence is a circle or polygon boundary used to validate check-in
// locations. The shape lives in a JSONB coordinates column.
type Geofence struct {
	ID          string
	CompanyID   string
	Name        string
	Coordinates GeofenceShape
	CreatedAt   time.Time
}

// GeofenceShape holds either a circle (Center+RadiusM) or a polygon
// (Points, at least 3).
type GeofenceShape struct {
	Center  *geo.Point  `json:"center,omitempty"`
	RadiusM float64     `json:"radius_m,omitempty"`
	Points  []geo.Point `json:"points,omitempty"`
}

// Containment is a tri-state geofence answer.
type Containment string

const (
	ContainmentInside  Containment = "inside"
	ContainmentOutside Containment = "outside"
	// ContainmentUnknown means no geofence is configured, coordinates
	// are absent, or the stored shape is not evaluable.
	ContainmentUnknown Containment = "unknown"
)

// Contains evaluates the point against the shape.
func (g *Geofence) Contains(lat, lng *float64) Containment {
	if g == nil || lat == nil || lng == nil {
		return ContainmentUnknown
	}
	shape := g.Coordinates
	if shape.Center != nil && shape.RadiusM > 0 {
		if geo.WithinRadius(*lat, *lng, *shape.Center, shape.RadiusM) {
			return ContainmentInside
		}
		return ContainmentOutside
	}
	if len(shape.Points) >= 3 {
		if geo.PointInPolygon(*lat, *lng, shape.Points) {
			return ContainmentInside
		}
		return ContainmentOutside
	}
	return ContainmentUnknown
}

// Value implements driver.Valuer for database storage
func (s GeofenceShape) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for database retrieval
func (s *GeofenceShape) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan GeofenceShape: invalid type")
	}
	return json.Unmarshal(bytes, s)
}
