package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"timertable/internal/model"
)

// localTimestamp is the floating DATE-TIME layout used together with TZID.
const localTimestamp = "20060102T150405"

// schoolWeekdays maps Monday=0 .. Friday=4 to RRULE weekdays.
var schoolWeekdays = [model.SchoolDays]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR}

// ExportOptions controls calendar export.
type ExportOptions struct {
	// From selects the anchor week: events start on the Monday of the week
	// containing From.
	From time.Time

	// Location is the timezone of the lecture times. If nil, From's
	// location is used.
	Location *time.Location

	// Weeks limits each recurrence to this many weeks. Zero recurs forever.
	Weeks int

	// ProductID is written as PRODID.
	ProductID string
}

// MondayOf returns midnight of the Monday of the week containing t, in t's
// location.
func MondayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -model.DayOfWeek(t))
}

// WeeklyRule returns the RRULE value for a lecture held every week on the
// given school weekday (Monday=0).
func WeeklyRule(weekday, weeks int) string {
	opt := rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{schoolWeekdays[weekday]},
		Count:     weeks,
	}
	return opt.RRuleString()
}

// Export builds a calendar with one weekly recurring VEVENT per lecture.
func Export(week model.WeekTimetable, opts ExportOptions) *ical.Calendar {
	loc := opts.Location
	if loc == nil {
		loc = opts.From.Location()
	}
	if opts.ProductID == "" {
		opts.ProductID = "-//timertable//timetable export//KO"
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(opts.ProductID)

	monday := MondayOf(opts.From.In(loc))
	stamp := opts.From.UTC()
	tz := &ical.KeyValues{Key: string(ical.ParameterTzid), Value: []string{loc.String()}}

	for d, day := range week {
		date := monday.AddDate(0, 0, d)
		for i, l := range day {
			ev := cal.AddEvent(fmt.Sprintf("%s-d%d-p%d@timertable", monday.Format("20060102"), d, i))
			ev.SetDtStampTime(stamp)
			ev.SetProperty(ical.ComponentPropertyDtStart, l.Begin.On(date).Format(localTimestamp), tz)
			ev.SetProperty(ical.ComponentPropertyDtEnd, l.End.On(date).Format(localTimestamp), tz)
			ev.SetSummary(l.Subject)
			ev.AddRrule(WeeklyRule(d, opts.Weeks))
		}
	}
	return cal
}
