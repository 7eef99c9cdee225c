package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// SchoolDays is the number of weekdays (Monday..Friday) carrying lectures.
const SchoolDays = 5

// Lecture is a single period of the day. Begin <= End.
type Lecture struct {
	Begin   TimeOfDay `json:"begin" yaml:"begin"`
	End     TimeOfDay `json:"end" yaml:"end"`
	Subject string    `json:"subject" yaml:"subject"`
}

// Contains reports whether t lies within [Begin, End], both ends inclusive.
func (l Lecture) Contains(t TimeOfDay) bool {
	return l.Begin <= t && t <= l.End
}

// Duration returns End-Begin.
func (l Lecture) Duration() time.Duration {
	return l.End.Sub(l.Begin)
}

// DayTimetable is the ordered, non-overlapping lecture list of one weekday.
type DayTimetable []Lecture

// WeekTimetable holds Monday (0) through Friday (4). Saturday and Sunday
// have no entries.
type WeekTimetable [SchoolDays]DayTimetable

// DayOfWeek returns the weekday of now with Monday=0 ... Sunday=6.
func DayOfWeek(now time.Time) int {
	return (int(now.Weekday()) + 6) % 7
}

// IsSchoolDay reports whether weekday (Monday=0) has a timetable entry.
func IsSchoolDay(weekday int) bool {
	return weekday >= 0 && weekday < SchoolDays
}

// Bounds returns the earliest lecture begin and the latest lecture end over
// the whole week. ok is false when the week has no lectures at all.
func (w WeekTimetable) Bounds() (first, last TimeOfDay, ok bool) {
	for _, day := range w {
		for _, l := range day {
			if !ok || l.Begin < first {
				first = l.Begin
			}
			if !ok || l.End > last {
				last = l.End
			}
			ok = true
		}
	}
	return first, last, ok
}

var (
	ErrEmptyDay   = errors.New("school day has no lectures")
	ErrInverted   = errors.New("lecture ends before it begins")
	ErrOutOfRange = errors.New("lecture time outside of a single day")
	ErrUnsorted   = errors.New("lectures are not sorted by begin time")
	ErrOverlap    = errors.New("lecture overlaps the previous one")

	ErrEmptySubject = errors.New("lecture has no subject")
)

// ValidationError locates a malformed timetable entry. Index is -1 for
// day-level problems.
type ValidationError struct {
	Day   int
	Index int
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("day %d: %v", e.Day, e.Err)
	}
	return fmt.Sprintf("day %d lecture %d: %v", e.Day, e.Index, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks that every school day is non-empty, sorted ascending by
// begin and non-overlapping, and that every lecture names its subject.
// Touching lectures (end == next begin) are allowed. All problems are
// reported, joined.
func (w WeekTimetable) Validate() error {
	var errs []error
	for d, day := range w {
		if len(day) == 0 {
			errs = append(errs, &ValidationError{Day: d, Index: -1, Err: ErrEmptyDay})
			continue
		}
		for i, l := range day {
			if !l.Begin.Valid() || !l.End.Valid() {
				errs = append(errs, &ValidationError{Day: d, Index: i, Err: ErrOutOfRange})
				continue
			}
			if l.Begin > l.End {
				errs = append(errs, &ValidationError{Day: d, Index: i, Err: ErrInverted})
			}
			if strings.TrimSpace(l.Subject) == "" {
				errs = append(errs, &ValidationError{Day: d, Index: i, Err: ErrEmptySubject})
			}
			if i == 0 {
				continue
			}
			prev := day[i-1]
			switch {
			case l.Begin < prev.Begin:
				errs = append(errs, &ValidationError{Day: d, Index: i, Err: ErrUnsorted})
			case l.Begin < prev.End:
				errs = append(errs, &ValidationError{Day: d, Index: i, Err: ErrOverlap})
			}
		}
	}
	return errors.Join(errs...)
}
