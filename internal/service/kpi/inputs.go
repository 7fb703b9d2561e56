package kpi

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/kpi"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/summary"
)

// Named inputs a formula may reference. Attendance inputs resolve from
// the period's daily summaries, evaluation.score from the external
// review table.
const (
	RefWorkedMinutes   = "attendance.worked_minutes"
	RefLateMinutes     = "attendance.late_minutes"
	RefLateCount       = "attendance.late_count"
	RefOvertimeMinutes = "attendance.overtime_minutes"
	RefDaysPresent     = "attendance.days_present"
	RefDaysComplete    = "attendance.days_complete"
	RefDaysTotal       = "attendance.days_total"
	RefEvaluationScore = "evaluation.score"
)

// attendanceInputs folds summaries into the named attendance inputs.
// An empty period resolves to no inputs at all: a zero would be a
// fabricated value, not a measurement.
func attendanceInputs(summaries []summary.DailySummary) map[string]float64 {
	if len(summaries) == 0 {
		return nil
	}

	var worked, late, lateDays, overtime, present, complete float64
	for _, s := range summaries {
		worked += float64(s.WorkedMinutes)
		late += float64(s.LateMinutes)
		if s.LateMinutes > 0 {
			lateDays++
		}
		overtime += float64(s.OvertimeMinutes)
		if s.Status != summary.StatusNoRecords {
			present++
		}
		if s.Status == summary.StatusComplete {
			complete++
		}
	}

	return map[string]float64{
		RefWorkedMinutes:   worked,
		RefLateMinutes:     late,
		RefLateCount:       lateDays,
		RefOvertimeMinutes: overtime,
		RefDaysPresent:     present,
		RefDaysComplete:    complete,
		RefDaysTotal:       float64(len(summaries)),
	}
}

// resolveInputs gathers the inputs a definition's formula references.
// Sources are fetched lazily: an attendance-only KPI never touches the
// evaluation table and vice versa.
func (s *Service) resolveInputs(ctx context.Context, def kpi.Definition, companyID, employeeID, period string) (map[string]float64, error) {
	inputs := make(map[string]float64)

	needsAttendance := false
	needsEvaluation := false
	for _, ref := range def.Formula.Refs() {
		switch {
		case strings.HasPrefix(ref, "attendance."):
			needsAttendance = true
		case ref == RefEvaluationScore:
			needsEvaluation = true
		}
	}

	if needsAttendance {
		from, to, err := periodRange(period)
		if err != nil {
			return nil, err
		}
		summaries, err := s.summaryRepo.ListForEmployeeRange(ctx, employeeID, from, to, companyID)
		if err != nil {
			return nil, fmt.Errorf("failed to list summaries: %w", err)
		}
		for ref, v := range attendanceInputs(summaries) {
			inputs[ref] = v
		}
	}

	if needsEvaluation {
		score, ok, err := s.evaluationRepo.GetScore(ctx, employeeID, period, companyID)
		if err != nil {
			return nil, fmt.Errorf("failed to get evaluation score: %w", err)
		}
		if ok {
			inputs[RefEvaluationScore] = score
		}
	}

	return inputs, nil
}

// periodRange expands a "2006-01" month label to its first and last
// day.
func periodRange(period string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", period)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid kpi period %q: %w", period, err)
	}
	end := start.AddDate(0, 1, -1)
	return start, end, nil
}
