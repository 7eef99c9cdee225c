package ics

import (
	"cmp"
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	appLog "timertable/internal/log"
	"timertable/internal/model"
)

// Occurrence is one concrete, dated instance of a lecture.
type Occurrence struct {
	Weekday int       `json:"weekday"`
	Index   int       `json:"index"`
	Subject string    `json:"subject"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Upcoming expands the weekly timetable into the concrete lectures that
// overlap [from, until), sorted by start. A lecture already running at
// from is included. Times are in from's location.
func Upcoming(week model.WeekTimetable, from, until time.Time) []Occurrence {
	out := make([]Occurrence, 0)
	if !until.After(from) {
		return out
	}
	monday := MondayOf(from)

	for d, day := range week {
		date := monday.AddDate(0, 0, d)
		for i, l := range day {
			r, err := rrule.NewRRule(rrule.ROption{
				Freq:    rrule.WEEKLY,
				Dtstart: l.Begin.On(date),
			})
			if err != nil {
				appLog.Error("upcoming: build rule failed", err, "weekday", d, "index", i)
				continue
			}
			dur := l.Duration()
			for _, start := range r.Between(from.Add(-dur), until, true) {
				end := start.Add(dur)
				if end.Before(from) || !start.Before(until) {
					continue
				}
				out = append(out, Occurrence{
					Weekday: d,
					Index:   i,
					Subject: l.Subject,
					Start:   start,
					End:     end,
				})
			}
		}
	}

	slices.SortFunc(out, func(a, b Occurrence) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return out
}
