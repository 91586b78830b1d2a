// Package biztime centralizes time handling for billing computations.
// All storage and transport use UTC; implicit local timezones are prohibited.
package biztime

import "time"

// NowUTC returns the current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// StartOfDayUTC returns midnight UTC of the given day.
func StartOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddMonths advances t by the given number of calendar months, clamping the
// day to the last valid day of the target month instead of overflowing the
// way time.AddDate does (Jan 31 + 1 month is Feb 29 in a leap year, not
// Mar 2). A date that falls on the last day of its month stays on the last
// day of the target month, so billing anchored at month end keeps billing at
// month end.
func AddMonths(t time.Time, months int) time.Time {
	year := t.Year()
	monthIndex := int(t.Month()) - 1 + months
	year += monthIndex / 12
	monthIndex %= 12
	if monthIndex < 0 {
		monthIndex += 12
		year--
	}
	month := time.Month(monthIndex + 1)

	day := t.Day()
	targetLast := daysIn(year, month)
	if day > targetLast || day == daysIn(t.Year(), t.Month()) {
		day = targetLast
	}

	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// AddYears advances t by whole calendar years with the same clamping rules
// as AddMonths (Feb 29 + 1 year is Feb 28, Feb 28 + 1 leap year is Feb 29).
func AddYears(t time.Time, years int) time.Time {
	return AddMonths(t, years*12)
}

// daysIn returns the number of days in the given month. Day zero of the
// following month normalizes to the last day of this one.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
