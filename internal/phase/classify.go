package phase

import (
	"slices"
	"time"

	"timertable/internal/model"
)

// Of classifies now against week. now is interpreted in its own location;
// callers convert to the display timezone first.
//
// Lecture boundaries are inclusive on both ends: an instant equal to a
// lecture's begin or end is InLecture, never FreeTime. When two lectures
// touch, the shared instant belongs to the earlier one.
//
// A school day without lectures is rejected by model.WeekTimetable.Validate;
// if one reaches here anyway it classifies as AfterSchool.
func Of(now time.Time, week model.WeekTimetable) Phase {
	weekday := model.DayOfWeek(now)
	if !model.IsSchoolDay(weekday) {
		return Weekend{}
	}

	day := week[weekday]
	if len(day) == 0 {
		return AfterSchool{}
	}

	t := model.Of(now)
	switch {
	case t < day[0].Begin:
		return BeforeSchool{FirstLectureBegin: day[0].Begin}
	case t > day[len(day)-1].End:
		return AfterSchool{}
	}

	idx, found := slices.BinarySearchFunc(day, t, compareLecture)
	if found {
		return InLecture{Index: idx, Lecture: day[idx]}
	}

	// idx is the insertion point: t lies after day[idx-1] and before
	// day[idx]. idx == 0 cannot happen past the BeforeSchool check above.
	if idx == 0 {
		return BeforeSchool{FirstLectureBegin: day[0].Begin}
	}
	free := FreeTime{Prev: Slot{Index: idx - 1, Lecture: day[idx-1]}}
	if idx < len(day) {
		free.Next = Slot{Index: idx, Lecture: day[idx]}
		free.HasNext = true
	}
	return free
}

// compareLecture orders a lecture interval against an instant: negative
// when the lecture lies entirely before t, positive when entirely after,
// zero when it contains t.
func compareLecture(l model.Lecture, t model.TimeOfDay) int {
	switch {
	case t < l.Begin:
		return 1
	case t > l.End:
		return -1
	default:
		return 0
	}
}

// Transitioned reports whether moving from previous to next warrants a
// notification. The first real classification after Unknown never does.
func Transitioned(previous, next Phase) bool {
	return !IsUnknown(previous) && !Equal(previous, next)
}

// Classify computes the phase of now and whether it differs from the
// previous tick's phase.
func Classify(now time.Time, week model.WeekTimetable, previous Phase) (Phase, bool) {
	p := Of(now, week)
	return p, Transitioned(previous, p)
}
