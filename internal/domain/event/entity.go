package event

import (
	"time"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/rule"
)

// Kind is the attendance event type.
type Kind string

const (
	KindCheckIn  Kind = "check_in"
	KindCheckOut Kind = "check_out"
	KindPauseIn  Kind = "pause_in"
	KindPauseOut Kind = "pause_out"
)

func (k Kind) Valid() bool {
	switch k {
	case KindCheckIn, KindCheckOut, KindPauseIn, KindPauseOut:
		return true
	}
	return false
}

// Source is where the event was recorded.
type Source string

const (
	SourceApp    Source = "app"
	SourceWeb    Source = "web"
	SourceReader Source = "reader"
)

func (s Source) Valid() bool {
	switch s {
	case SourceApp, SourceWeb, SourceReader:
		return true
	}
	return false
}

// Event is a raw attendance marking. Rows are immutable once stored;
// corrections are compensating events, never edits. Timestamps are
// server-assigned but NOT guaranteed monotonic per employee (offline
// submissions arrive late), so Seq breaks ordering ties.
type Event struct {
	ID         string
	CompanyID  string
	EmployeeID string
	Kind       Kind
	RecordedAt time.Time
	Source     Source
	Latitude   *float64
	Longitude  *float64
	DeviceID   *string
	PhotoRef   *string
	ClientIP   *string
	Seq        int64 // insertion order within the company
	CreatedAt  time.Time
}

// Normalization holds the tags the normalizer derives for one event.
// It is persisted alongside the raw row; the raw fields never change.
type Normalization struct {
	EventID        string
	WithinGeofence rule.Containment
	MissingGPS     bool // GPS required by shift or rule but absent
	MissingPhoto   bool
	IPAllowed      bool
	NormalizedAt   time.Time
}

// Normalized pairs the immutable event with its derived tags.
type Normalized struct {
	Event
	Normalization
}
