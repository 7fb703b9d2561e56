package leave

import "time"

// BusinessDays counts weekdays in [start, end] inclusive, skipping the
// given holiday dates. The count is frozen into the request at
// submission so later calendar edits never change history.
func BusinessDays(start, end time.Time, holidays []time.Time) int {
	if end.Before(start) {
		return 0
	}

	skip := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		skip[h.Format("2006-01-02")] = struct{}{}
	}

	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		if _, ok := skip[d.Format("2006-01-02")]; ok {
			continue
		}
		days++
	}
	return days
}
