package utils

import "time"

// DayLayout is the calendar-day format stored on records.
const DayLayout = "2006-01-02"

// DayKey returns the calendar day of t in t's location.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// PreviousDayKey returns the calendar day before t, in t's location.
// AddDate keeps this correct across DST changes.
func PreviousDayKey(t time.Time) string {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, t.Location()).AddDate(0, 0, -1).Format(DayLayout)
}

// NextClockTime returns the next instant strictly after now at hour:minute
// local time.
func NextClockTime(now time.Time, hour, minute int) time.Time {
	y, m, d := now.Date()
	next := time.Date(y, m, d, hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(y, m, d+1, hour, minute, 0, 0, now.Location())
	}
	return next
}
