package service

import "time"

// dayStart returns midnight of t's calendar day in the reference timezone.
func dayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// weekStart returns midnight of the Monday of t's week in the reference
// timezone.
func weekStart(t time.Time, loc *time.Location) time.Time {
	day := dayStart(t, loc)
	// time.Weekday is Sunday-based; the week here starts on Monday.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
