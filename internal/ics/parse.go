package ics

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "timertable/internal/log"
	"timertable/internal/model"
)

// ParseWeek builds a week timetable from the VEVENTs of an iCalendar
// payload.
//
//   - Events with a weekly RRULE land on every school weekday in BYDAY, or
//     on the weekday of DTSTART when BYDAY is absent.
//   - Events without RRULE land on the weekday of DTSTART.
//   - Other recurrence frequencies and weekend events are skipped.
//
// Times are taken as wall-clock times in loc. The result is sorted per day
// with exact duplicates removed; it is not validated.
func ParseWeek(body []byte, loc *time.Location) (model.WeekTimetable, error) {
	var week model.WeekTimetable
	if len(body) == 0 {
		return week, errors.New("empty ICS body")
	}
	if loc == nil {
		loc = time.Local
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return week, fmt.Errorf("ics: parse: %w", err)
	}

	for _, ve := range cal.Events() {
		lecture, days, perr := parseVEvent(ve, loc)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Warn("ics vevent skipped", "err", perr)
			continue
		}
		for _, d := range days {
			if model.IsSchoolDay(d) {
				week[d] = append(week[d], lecture)
			}
		}
	}

	for d := range week {
		slices.SortStableFunc(week[d], func(a, b model.Lecture) int {
			return cmp.Compare(a.Begin, b.Begin)
		})
		week[d] = slices.Compact(week[d])
	}
	return week, nil
}

func parseVEvent(ve *ical.VEvent, loc *time.Location) (model.Lecture, []int, error) {
	var l model.Lecture

	start, err := ve.GetStartAt()
	if err != nil {
		return l, nil, fmt.Errorf("DTSTART: %w", err)
	}
	end, err := ve.GetEndAt()
	if err != nil {
		return l, nil, fmt.Errorf("DTEND: %w", err)
	}
	start, end = start.In(loc), end.In(loc)
	if end.Before(start) {
		return l, nil, errors.New("DTEND before DTSTART")
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		l.Subject = p.Value
	}
	l.Begin = model.Of(start)
	l.End = model.Of(end)

	days := []int{model.DayOfWeek(start)}
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil && p.Value != "" {
		opt, err := rrule.StrToROption(p.Value)
		if err != nil {
			return l, nil, fmt.Errorf("RRULE %q: %w", p.Value, err)
		}
		if opt.Freq != rrule.WEEKLY {
			return l, nil, fmt.Errorf("RRULE %q: only weekly recurrence maps onto a timetable", p.Value)
		}
		if len(opt.Byweekday) > 0 {
			days = days[:0]
			for _, wd := range opt.Byweekday {
				days = append(days, wd.Day())
			}
		}
	}
	return l, days, nil
}
