package phase

import (
	"time"

	"timertable/internal/model"
)

// Progress is the countdown towards the end of the current phase.
// Remaining shrinks as time advances; Total is fixed for one occurrence of
// the phase.
type Progress struct {
	Remaining time.Duration
	Total     time.Duration
}

// Compute returns the progress of p at now. appStart anchors the
// BeforeSchool countdown: its total runs from the time-of-day the process
// started, not from any school-day anchor.
//
// Weekend, AfterSchool, Unknown and a FreeTime without a next lecture have
// no progress.
func Compute(p Phase, now, appStart time.Time) (Progress, bool) {
	t := model.Of(now)
	switch v := normalize(p).(type) {
	case BeforeSchool:
		pr := Progress{
			Remaining: v.FirstLectureBegin.Sub(t),
			Total:     v.FirstLectureBegin.Sub(model.Of(appStart)),
		}
		// An anchor from an earlier day can lie later in the day than now.
		// Callers that tick re-anchor per occurrence (see board.Board).
		if pr.Total < pr.Remaining {
			pr.Total = pr.Remaining
		}
		return pr, true
	case InLecture:
		return Progress{
			Remaining: v.Lecture.End.Sub(t),
			Total:     v.Lecture.Duration(),
		}, true
	case FreeTime:
		if !v.HasNext {
			return Progress{}, false
		}
		return Progress{
			Remaining: v.Next.Lecture.Begin.Sub(t),
			Total:     v.Next.Lecture.Begin.Sub(v.Prev.Lecture.End),
		}, true
	default:
		return Progress{}, false
	}
}

// Elapsed returns Total-Remaining.
func (p Progress) Elapsed() time.Duration {
	return p.Total - p.Remaining
}

// Fraction returns the completed share in [0, 1]. A zero total is an
// instantaneous event and counts as complete.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 1
	}
	f := 1 - float64(p.Remaining)/float64(p.Total)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
