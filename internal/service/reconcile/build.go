package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/event"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/rule"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/shift"
	"github.com/talenttrack-hr/talenttrack-backend-go/internal/domain/summary"
)

// DayInput is everything the pure fold needs for one
// (company, employee, date) key. Config is threaded in explicitly so
// the computation has no ambient state and is trivially testable.
type DayInput struct {
	CompanyID  string
	EmployeeID string
	Date       time.Time // local calendar date at midnight
	Location   *time.Location

	Events []event.Normalized
	Shift  *shift.Resolved      // nil when unassigned
	Rule   *rule.AttendanceRule // nil when the company has no rule
}

// BuildSummary folds one day's normalized events into a DailySummary.
// Deterministic: the same input always produces the same summary
// (idempotent re-runs overwrite with identical rows). Overtime is
// computed here only for daily-cap mode; weekly-cap is layered on by
// the service, which owns the week aggregation.
func BuildSummary(in DayInput) summary.DailySummary {
	events := make([]event.Normalized, len(in.Events))
	copy(events, in.Events)
	// Event timestamps are not monotonic per employee (late/offline
	// submissions); order by recorded time, insertion order breaks ties.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].RecordedAt.Equal(events[j].RecordedAt) {
			return events[i].Seq < events[j].Seq
		}
		return events[i].RecordedAt.Before(events[j].RecordedAt)
	})

	var (
		firstEntry *time.Time
		lastExit   *time.Time
		openIns    []time.Time
		openPauses []time.Time
		intervals  []summary.Interval
		pauses     []summary.Interval
		diags      []string
	)

	for _, ev := range events {
		t := ev.RecordedAt
		switch ev.Kind {
		case event.KindCheckIn:
			openIns = append(openIns, t)
			if firstEntry == nil {
				first := t
				firstEntry = &first
			}
		case event.KindCheckOut:
			if len(openIns) == 0 {
				diags = append(diags, fmt.Sprintf("check_out at %s without open check_in", t.Format(time.RFC3339)))
				continue
			}
			// Each check_out closes the earliest still-open check_in.
			in := openIns[0]
			openIns = openIns[1:]
			intervals = append(intervals, summary.Interval{In: in, Out: t})
			if lastExit == nil || t.After(*lastExit) {
				exit := t
				lastExit = &exit
			}
		case event.KindPauseIn:
			openPauses = append(openPauses, t)
		case event.KindPauseOut:
			if len(openPauses) == 0 {
				diags = append(diags, fmt.Sprintf("pause_out at %s without open pause_in", t.Format(time.RFC3339)))
				continue
			}
			p := openPauses[0]
			openPauses = openPauses[1:]
			pauses = append(pauses, summary.Interval{In: p, Out: t})
		}
	}

	openCheckIn := len(openIns) > 0
	if openCheckIn {
		// No synthetic close-out is ever invented; the day stays
		// incomplete and the open interval contributes zero minutes.
		diags = append(diags, "unclosed check_in, no worked time counted for the open interval")
	}
	if len(openPauses) > 0 {
		diags = append(diags, "unclosed pause_in ignored")
	}

	workedMinutes := 0
	for _, iv := range intervals {
		workedMinutes += wholeMinutes(iv.In, iv.Out)
	}

	// Pauses only subtract where they intersect a work interval;
	// clamping to the enclosing interval keeps durations non-negative
	// even for overlapping or out-of-order pause events.
	pauseMinutes := 0
	for _, p := range pauses {
		for _, iv := range intervals {
			start := laterOf(p.In, iv.In)
			end := earlierOf(p.Out, iv.Out)
			if end.After(start) {
				pauseMinutes += wholeMinutes(start, end)
			}
		}
	}
	workedMinutes -= pauseMinutes
	if workedMinutes < 0 {
		workedMinutes = 0
	}

	lateMinutes := computeLate(in, firstEntry, &diags)

	overtimeMinutes := 0
	if in.Shift != nil && overtimeMode(in.Rule) == rule.OvertimeDailyCap {
		if expected := in.Shift.Definition.ExpectedDailyMinutes; expected > 0 && workedMinutes > expected {
			overtimeMinutes = workedMinutes - expected
		}
	}

	status := summary.StatusComplete
	switch {
	case len(events) == 0:
		status = summary.StatusNoRecords
	case openCheckIn || len(intervals) == 0:
		status = summary.StatusIncomplete
	}

	detail := summary.Detail{
		Intervals:    intervals,
		PauseMinutes: pauseMinutes,
		OpenCheckIn:  openCheckIn,
		Diagnostics:  diags,
		Unassigned:   in.Shift == nil,
	}
	if in.Shift != nil {
		shiftID := in.Shift.Definition.ID
		detail.ShiftID = &shiftID
	}

	return summary.DailySummary{
		CompanyID:       in.CompanyID,
		EmployeeID:      in.EmployeeID,
		Date:            in.Date,
		FirstEntry:      firstEntry,
		LastExit:        lastExit,
		WorkedMinutes:   workedMinutes,
		LateMinutes:     lateMinutes,
		OvertimeMinutes: overtimeMinutes,
		Status:          status,
		Detail:          detail,
	}
}

// computeLate derives late minutes from the first entry against the
// shift start plus tolerance. Unassigned days are never late. Minutes
// below the company tardiness threshold do not count; once at or over
// it, the full excess counts.
func computeLate(in DayInput, firstEntry *time.Time, diags *[]string) int {
	if in.Shift == nil || firstEntry == nil {
		return 0
	}

	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	start, err := in.Shift.Definition.StartOn(in.Date, loc)
	if err != nil {
		*diags = append(*diags, err.Error())
		return 0
	}

	allowed := start.Add(time.Duration(in.Shift.Definition.ToleranceMinutes) * time.Minute)
	late := wholeMinutes(allowed, *firstEntry)
	if late <= 0 {
		return 0
	}
	if in.Rule != nil && late < in.Rule.TardinessThresholdMin {
		return 0
	}
	return late
}

func overtimeMode(r *rule.AttendanceRule) rule.OvertimeMode {
	if r == nil || r.OvertimeMode == "" {
		return rule.OvertimeDailyCap
	}
	return r.OvertimeMode
}

// wholeMinutes returns full minutes from a to b, negative when b
// precedes a.
func wholeMinutes(a, b time.Time) int {
	return int(b.Sub(a) / time.Minute)
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
