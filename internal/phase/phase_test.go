package phase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timertable/internal/model"
)

var kst = time.FixedZone("KST", 9*3600)

var (
	math    = model.Lecture{Begin: model.Clock(8, 0, 0), End: model.Clock(8, 50, 0), Subject: "Math"}
	english = model.Lecture{Begin: model.Clock(9, 0, 0), End: model.Clock(9, 50, 0), Subject: "English"}
	science = model.Lecture{Begin: model.Clock(10, 0, 0), End: model.Clock(10, 50, 0), Subject: "Science"}
)

func testWeek() model.WeekTimetable {
	day := model.DayTimetable{math, english}
	long := model.DayTimetable{math, english, science}
	return model.WeekTimetable{day, long, day, long, day}
}

// at returns 2024-03-04 (a Monday) plus offset days at hh:mm:ss KST.
func at(offset, hh, mm, ss int) time.Time {
	return time.Date(2024, 3, 4+offset, hh, mm, ss, 0, kst)
}

func TestOfScenario(t *testing.T) {
	week := testWeek()
	tests := []struct {
		name string
		now  time.Time
		want Phase
	}{
		{"before-school", at(0, 7, 59, 59), BeforeSchool{FirstLectureBegin: math.Begin}},
		{"first-begin-inclusive", at(0, 8, 0, 0), InLecture{Index: 0, Lecture: math}},
		{"mid-lecture", at(0, 8, 25, 0), InLecture{Index: 0, Lecture: math}},
		{"first-end-inclusive", at(0, 8, 50, 0), InLecture{Index: 0, Lecture: math}},
		{"gap", at(0, 8, 50, 1), FreeTime{
			Prev:    Slot{Index: 0, Lecture: math},
			Next:    Slot{Index: 1, Lecture: english},
			HasNext: true,
		}},
		{"gap-last-second", at(0, 8, 59, 59), FreeTime{
			Prev:    Slot{Index: 0, Lecture: math},
			Next:    Slot{Index: 1, Lecture: english},
			HasNext: true,
		}},
		{"last-end-inclusive", at(0, 9, 50, 0), InLecture{Index: 1, Lecture: english}},
		{"after-school", at(0, 9, 50, 1), AfterSchool{}},
		{"midnight", at(0, 0, 0, 0), BeforeSchool{FirstLectureBegin: math.Begin}},
		{"late-night", at(0, 23, 59, 59), AfterSchool{}},
		{"tuesday-third", at(1, 10, 30, 0), InLecture{Index: 2, Lecture: science}},
		{"tuesday-second-gap", at(1, 9, 55, 0), FreeTime{
			Prev:    Slot{Index: 1, Lecture: english},
			Next:    Slot{Index: 2, Lecture: science},
			HasNext: true,
		}},
		{"saturday-morning", at(5, 8, 30, 0), Weekend{}},
		{"sunday-night", at(6, 23, 0, 0), Weekend{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Of(tt.now, week))
		})
	}
}

func TestOfSubSecondTruncation(t *testing.T) {
	now := time.Date(2024, 3, 4, 8, 50, 0, 999_999_999, kst)
	assert.Equal(t, InLecture{Index: 0, Lecture: math}, Of(now, testWeek()))
}

func TestOfUsesLocationOfNow(t *testing.T) {
	// 23:30 UTC Sunday is 08:30 Monday in KST.
	utc := time.Date(2024, 3, 3, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, Weekend{}, Of(utc, testWeek()))
	assert.Equal(t, InLecture{Index: 0, Lecture: math}, Of(utc.In(kst), testWeek()))
}

func TestOfTouchingLectures(t *testing.T) {
	a := model.Lecture{Begin: model.Clock(8, 0, 0), End: model.Clock(9, 0, 0), Subject: "A"}
	b := model.Lecture{Begin: model.Clock(9, 0, 0), End: model.Clock(10, 0, 0), Subject: "B"}
	day := model.DayTimetable{a, b}
	week := model.WeekTimetable{day, day, day, day, day}

	assert.Equal(t, InLecture{Index: 0, Lecture: a}, Of(at(0, 9, 0, 0), week))
	assert.Equal(t, InLecture{Index: 1, Lecture: b}, Of(at(0, 9, 0, 1), week))
}

func TestOfSingleAndDegenerate(t *testing.T) {
	only := model.Lecture{Begin: model.Clock(12, 0, 0), End: model.Clock(12, 0, 0), Subject: "Assembly"}
	day := model.DayTimetable{only}
	week := model.WeekTimetable{day, day, day, day, day}

	assert.Equal(t, BeforeSchool{FirstLectureBegin: only.Begin}, Of(at(2, 11, 59, 59), week))
	assert.Equal(t, InLecture{Index: 0, Lecture: only}, Of(at(2, 12, 0, 0), week))
	assert.Equal(t, AfterSchool{}, Of(at(2, 12, 0, 1), week))

	var empty model.WeekTimetable
	assert.Equal(t, AfterSchool{}, Of(at(0, 9, 0, 0), empty))
}

func TestPropertiesOverWholeDay(t *testing.T) {
	week := testWeek()
	day := week[3]
	for s := 0; s < 24*3600; s += 7 {
		now := at(3, 0, 0, 0).Add(time.Duration(s) * time.Second)
		tod := model.Of(now)
		got := Of(now, week)

		switch {
		case tod < day[0].Begin:
			require.Equal(t, BeforeSchool{FirstLectureBegin: day[0].Begin}, got, "at %s", tod)
		case tod > day[len(day)-1].End:
			require.Equal(t, AfterSchool{}, got, "at %s", tod)
		default:
			in := -1
			for i, l := range day {
				if l.Contains(tod) {
					in = i
					break
				}
			}
			if in >= 0 {
				require.Equal(t, InLecture{Index: in, Lecture: day[in]}, got, "at %s", tod)
				continue
			}
			ft, ok := got.(FreeTime)
			require.True(t, ok, "at %s: got %#v", tod, got)
			require.True(t, ft.HasNext)
			assert.Equal(t, ft.Prev.Index+1, ft.Next.Index)
			assert.Less(t, ft.Prev.Lecture.End, tod)
			assert.Greater(t, ft.Next.Lecture.Begin, tod)
		}
	}
}

func TestClassifyTransitions(t *testing.T) {
	week := testWeek()

	p, changed := Classify(at(0, 8, 10, 0), week, Unknown{})
	assert.Equal(t, InLecture{Index: 0, Lecture: math}, p)
	assert.False(t, changed, "first classification never chimes")

	p, changed = Classify(at(0, 8, 10, 0), week, nil)
	assert.False(t, changed, "nil previous behaves as Unknown")

	p2, changed := Classify(at(0, 8, 10, 1), week, p)
	assert.Equal(t, p, p2)
	assert.False(t, changed)

	p3, changed := Classify(at(0, 8, 50, 1), week, p2)
	assert.IsType(t, FreeTime{}, p3)
	assert.True(t, changed)

	_, changed = Classify(at(5, 8, 50, 1), week, Weekend{})
	assert.False(t, changed)
}

func TestEqualStructural(t *testing.T) {
	twin := model.DayTimetable{
		{Begin: model.Clock(8, 0, 0), End: model.Clock(8, 50, 0), Subject: "Math"},
	}
	a := InLecture{Index: 0, Lecture: twin[0]}
	b := InLecture{Index: 1, Lecture: twin[0]}

	assert.True(t, Equal(a, InLecture{Index: 0, Lecture: math}))
	assert.False(t, Equal(a, b), "same lecture at a different index is a different phase")
	assert.False(t, Equal(Weekend{}, AfterSchool{}))
	assert.True(t, Equal(nil, Unknown{}))
	assert.True(t, Transitioned(a, b))
	assert.False(t, Transitioned(Unknown{}, b))

	withNext := FreeTime{Prev: Slot{0, math}, Next: Slot{1, english}, HasNext: true}
	withoutNext := FreeTime{Prev: Slot{0, math}, Next: Slot{1, english}}
	assert.False(t, Equal(withNext, withoutNext))
}

func TestCompute(t *testing.T) {
	appStart := at(0, 7, 0, 0)
	tests := []struct {
		name  string
		phase Phase
		now   time.Time
		want  Progress
		ok    bool
	}{
		{"before-school", BeforeSchool{FirstLectureBegin: math.Begin}, at(0, 7, 30, 0),
			Progress{Remaining: 30 * time.Minute, Total: time.Hour}, true},
		{"in-lecture", InLecture{Index: 0, Lecture: math}, at(0, 8, 20, 0),
			Progress{Remaining: 30 * time.Minute, Total: 50 * time.Minute}, true},
		{"free-time", FreeTime{Prev: Slot{0, math}, Next: Slot{1, english}, HasNext: true}, at(0, 8, 55, 0),
			Progress{Remaining: 5 * time.Minute, Total: 10 * time.Minute}, true},
		{"free-time-no-next", FreeTime{Prev: Slot{1, english}}, at(0, 9, 55, 0), Progress{}, false},
		{"weekend", Weekend{}, at(5, 9, 0, 0), Progress{}, false},
		{"after-school", AfterSchool{}, at(0, 18, 0, 0), Progress{}, false},
		{"unknown", Unknown{}, at(0, 8, 0, 0), Progress{}, false},
		{"nil", nil, at(0, 8, 0, 0), Progress{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Compute(tt.phase, tt.now, appStart)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeBeforeSchoolStaleAnchor(t *testing.T) {
	// Started Friday at 09:30, still running Monday morning.
	appStart := at(-3, 9, 30, 0)
	got, ok := Compute(BeforeSchool{FirstLectureBegin: math.Begin}, at(0, 6, 0, 0), appStart)
	require.True(t, ok)
	assert.Equal(t, 2*time.Hour, got.Remaining)
	assert.Equal(t, 2*time.Hour, got.Total)
	assert.Equal(t, 0.0, got.Fraction())
}

func TestFraction(t *testing.T) {
	assert.Equal(t, 0.0, Progress{Remaining: time.Hour, Total: time.Hour}.Fraction())
	assert.Equal(t, 0.5, Progress{Remaining: 30 * time.Minute, Total: time.Hour}.Fraction())
	assert.Equal(t, 1.0, Progress{Remaining: 0, Total: time.Hour}.Fraction())
	assert.Equal(t, 1.0, Progress{}.Fraction(), "0/0 is complete")
	assert.Equal(t, 0.0, Progress{Remaining: 2 * time.Hour, Total: time.Hour}.Fraction())
	assert.Equal(t, 1.0, Progress{Remaining: -time.Minute, Total: time.Hour}.Fraction())
	assert.Equal(t, 20*time.Minute, Progress{Remaining: 30 * time.Minute, Total: 50 * time.Minute}.Elapsed())
}

func TestFractionMonotonicWithinPhase(t *testing.T) {
	week := testWeek()
	appStart := at(0, 6, 0, 0)

	check := func(from, to, boundary time.Time) {
		t.Helper()
		first := Of(from, week)
		last := -1.0
		for now := from; !now.After(to); now = now.Add(time.Second) {
			p := Of(now, week)
			require.True(t, Equal(first, p), "phase changed at %s", now)
			pr, ok := Compute(p, now, appStart)
			require.True(t, ok)
			f := pr.Fraction()
			require.GreaterOrEqual(t, f, last, "at %s", now)
			last = f
		}
		pr, ok := Compute(first, boundary, appStart)
		require.True(t, ok)
		assert.Equal(t, 1.0, pr.Fraction(), "complete at the boundary")
	}

	check(at(0, 8, 0, 0), at(0, 8, 50, 0), at(0, 8, 50, 0))
	check(at(0, 8, 50, 1), at(0, 8, 59, 59), at(0, 9, 0, 0))
	check(at(0, 6, 0, 0), at(0, 7, 59, 59), at(0, 8, 0, 0))
}
