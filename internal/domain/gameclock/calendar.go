package gameclock

import "time"

const (
	MinutesPerDay  = 24 * 60
	MinutesPerWeek = 7 * MinutesPerDay
	WeekDuration   = 7 * 24 * time.Hour
)

// Calendar fixes the time zone used for all schedule math. The canonical
// week starts Monday 00:00 in the calendar's zone.
type Calendar struct {
	loc *time.Location
}

func New(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{loc: loc}
}

func UTC() Calendar {
	return Calendar{loc: time.UTC}
}

func (c Calendar) Zone() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// WeekStart returns Monday 00:00 of the week containing t.
func (c Calendar) WeekStart(t time.Time) time.Time {
	d := t.In(c.Zone())
	back := (int(d.Weekday()) + 6) % 7
	return time.Date(d.Year(), d.Month(), d.Day()-back, 0, 0, 0, 0, c.Zone())
}

// WeekEnd returns WeekStart(t) plus exactly seven days of wall time.
func (c Calendar) WeekEnd(t time.Time) time.Time {
	return c.WeekStart(t).Add(WeekDuration)
}

func (c Calendar) SameWeek(a, b time.Time) bool {
	return c.WeekStart(a).Equal(c.WeekStart(b))
}

// DayOfWeek returns 0 for Monday through 6 for Sunday.
func (c Calendar) DayOfWeek(t time.Time) int {
	return (int(t.In(c.Zone()).Weekday()) + 6) % 7
}

func (c Calendar) Hour(t time.Time) int {
	return t.In(c.Zone()).Hour()
}

func (c Calendar) MinuteOfDay(t time.Time) int {
	d := t.In(c.Zone())
	return d.Hour()*60 + d.Minute()
}

// MinuteOfWeek returns whole minutes elapsed since the week start.
func (c Calendar) MinuteOfWeek(t time.Time) int {
	return int(t.Sub(c.WeekStart(t)) / time.Minute)
}

// At converts a week-relative minute offset back to an absolute time.
func At(weekStart time.Time, minute int) time.Time {
	return weekStart.Add(time.Duration(minute) * time.Minute)
}
