package kpi

import "time"

// DataSource names where a KPI formula's inputs come from.
type DataSource string

const (
	SourceAttendance DataSource = "attendance"
	SourceEvaluation DataSource = "evaluation"
	SourceMixed      DataSource = "mixed"
)

// Definition is a configurable KPI. Formula is a tagged expression
// tree (JSONB); thresholds are template data, never hard-coded.
type Definition struct {
	ID              string
	CompanyID       string
	Code            string // unique per company
	Name            string
	Unit            string
	Source          DataSource
	Formula         Expr
	Target          float64
	GreenThreshold  float64 // compliance % at or above → green
	YellowThreshold float64 // compliance % at or above → yellow
	CreatedAt       time.Time
}

// Severity is the three-tier classification (semáforo).
type Severity string

const (
	SeverityGreen  Severity = "green"
	SeverityYellow Severity = "yellow"
	SeverityRed    Severity = "red"
)

// Classify maps a compliance percentage to a severity tier using the
// definition's thresholds.
func Classify(compliance, greenAt, yellowAt float64) Severity {
	switch {
	case compliance >= greenAt:
		return SeverityGreen
	case compliance >= yellowAt:
		return SeverityYellow
	default:
		return SeverityRed
	}
}

// Result is one evaluated KPI for an employee and period. A missing
// input produces a nil Value and InsufficientData = true, never a
// fabricated zero.
type Result struct {
	ID               string
	CompanyID        string
	EmployeeID       string
	KpiID            string
	Period           string
	Value            *float64
	CompliancePct    *float64
	Severity         *Severity
	InsufficientData bool
	Detail           map[string]float64 // resolved inputs
	ComputedAt       time.Time
}

// EvaluationScore is an external performance-review score row, the
// `evaluation` data source.
type EvaluationScore struct {
	ID         string
	CompanyID  string
	EmployeeID string
	Period     string
	Score      float64
	RecordedAt time.Time
}
