package domain

import "time"

// DaypartingSchedule allows a campaign to deliver during one hour window on
// one day of the week, evaluated in the brand's timezone. Days are indexed
// with Monday = 0 through Sunday = 6; hours are inclusive on both ends, so
// StartHour 8 and EndHour 20 covers 08:00:00 through 20:59:59 local time.
type DaypartingSchedule struct {
	ID         int64
	CampaignID int64
	DayOfWeek  int
	StartHour  int
	EndHour    int
	Active     bool
	CreatedAt  time.Time
}

// WeekdayIndex converts Go's Sunday-based weekday to Monday = 0 indexing.
func WeekdayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// ScheduleAllows reports whether the instant falls inside at least one
// active window once converted to the given timezone. A campaign with no
// active window for the current day and hour is not allowed to run, so an
// empty slice always yields false.
func ScheduleAllows(entries []DaypartingSchedule, at time.Time, loc *time.Location) bool {
	local := at.In(loc)
	day := WeekdayIndex(local.Weekday())
	hour := local.Hour()
	for _, e := range entries {
		if !e.Active || e.DayOfWeek != day {
			continue
		}
		if hour >= e.StartHour && hour <= e.EndHour {
			return true
		}
	}
	return false
}
