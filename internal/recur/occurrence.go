// Package recur expands recurring transaction templates into concrete dated
// occurrences. It is the single implementation shared by dashboards, credit
// usage and transaction listings.
package recur

import (
	"contas/internal/core"
)

// OccurrencesInWindow computes every date a monthly recurrence fires inside
// the query window. The recurrence is active from start through end
// (inclusive); a zero end means open-ended. dayOfMonth is clamped to the last
// valid day of each month, so a recurrence on day 31 fires on April 30 and on
// February 28 or 29. Every eligible month yields exactly one occurrence.
func OccurrencesInWindow(dayOfMonth int, start, end, windowStart, windowEnd core.Date) []core.Date {
	if dayOfMonth < 1 || dayOfMonth > 31 {
		return nil
	}

	effStart := start
	if windowStart.After(effStart) {
		effStart = windowStart
	}
	effEnd := windowEnd
	if !end.IsEmpty() && end.Before(effEnd) {
		effEnd = end
	}
	// Covers windows entirely before start, entirely after end, and
	// end < start.
	if effStart.After(effEnd) {
		return nil
	}

	var dates []core.Date
	year, month := effStart.Year(), effStart.Month()
	lastYear, lastMonth := effEnd.Year(), effEnd.Month()
	for year < lastYear || (year == lastYear && month <= lastMonth) {
		candidate := core.DateInMonth(year, month, dayOfMonth)
		if !candidate.Before(effStart) && !candidate.After(effEnd) {
			dates = append(dates, candidate)
		}
		year, month = core.AddMonths(year, month, 1)
	}
	return dates
}
