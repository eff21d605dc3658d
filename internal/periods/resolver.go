package periods

import "time"

// Boundary is the inclusive [start, end] range a date resolves into.
type Boundary struct {
	Start time.Time
	End   time.Time
}

// Resolve maps a calendar date to its period boundary. Pure and
// deterministic; any date is accepted. Unknown strategies fall back to
// biweekly, the system default.
func Resolve(date time.Time, strategy Strategy) Boundary {
	year, month, day := date.Date()

	startDay := 1
	endDay := 15
	if strategy == StrategyMonthly {
		endDay = daysInMonth(year, month)
	} else if day > 15 {
		startDay = 16
		endDay = daysInMonth(year, month)
	}

	return Boundary{
		Start: time.Date(year, month, startDay, 0, 0, 0, 0, time.UTC),
		End:   time.Date(year, month, endDay, 0, 0, 0, 0, time.UTC),
	}
}

// daysInMonth returns the calendar-correct month length, leap years included.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
