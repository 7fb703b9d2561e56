package summary

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Status classifies a reconciled day.
type Status string

const (
	StatusComplete   Status = "complete"
	StatusIncomplete Status = "incomplete"
	StatusNoRecords  Status = "no-records"
)

// DailySummary is the reconciled work record for one employee and one
// calendar date. Unique per (company, employee, date); written only by
// the daily reconciler, with overwrite semantics.
type DailySummary struct {
	ID              string
	CompanyID       string
	EmployeeID      string
	Date            time.Time // calendar date, local day boundary
	FirstEntry      *time.Time
	LastExit        *time.Time
	WorkedMinutes   int
	LateMinutes     int
	OvertimeMinutes int
	Status          Status
	Detail          Detail
	ComputedAt      time.Time
}

// Detail is the structured blob attached to a summary: interval pairs,
// diagnostics for unpairable chronology, and the resolution outcome.
type Detail struct {
	Intervals    []Interval `json:"intervals,omitempty"`
	PauseMinutes int        `json:"pause_minutes,omitempty"`
	OpenCheckIn  bool       `json:"open_check_in,omitempty"`
	Diagnostics  []string   `json:"diagnostics,omitempty"`
	ShiftID      *string    `json:"shift_id,omitempty"`
	Unassigned   bool       `json:"unassigned,omitempty"`
}

// Value implements driver.Valuer for database storage
func (d Detail) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for database retrieval
func (d *Detail) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan Detail: invalid type")
	}
	return json.Unmarshal(bytes, d)
}

// Interval is one matched check_in → check_out pair.
type Interval struct {
	In  time.Time `json:"in"`
	Out time.Time `json:"out"`
}
