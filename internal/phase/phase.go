// Package phase classifies an instant against a week timetable.
//
// A Phase is recomputed from scratch on every tick. The previous tick's
// Phase is only kept by the caller to detect transitions, which is what
// triggers the chime.
package phase

import "timertable/internal/model"

// Kind names a Phase variant. The values are stable and used on the wire.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindWeekend      Kind = "weekend"
	KindBeforeSchool Kind = "before_school"
	KindInLecture    Kind = "in_lecture"
	KindFreeTime     Kind = "free_time"
	KindAfterSchool  Kind = "after_school"
)

// Phase is one of Unknown, Weekend, BeforeSchool, InLecture, FreeTime or
// AfterSchool. All variants are comparable values, so two phases are equal
// exactly when == holds.
type Phase interface {
	Kind() Kind
	isPhase()
}

// Unknown is the initial sentinel. It is never produced by Classify.
type Unknown struct{}

type Weekend struct{}

type BeforeSchool struct {
	FirstLectureBegin model.TimeOfDay
}

// Slot is a lecture together with its position in the day.
type Slot struct {
	Index   int
	Lecture model.Lecture
}

type InLecture struct {
	Index   int
	Lecture model.Lecture
}

// FreeTime is the gap after Prev. Next is only meaningful when HasNext is
// set; a gap without a next lecture means no more lectures today.
type FreeTime struct {
	Prev    Slot
	Next    Slot
	HasNext bool
}

type AfterSchool struct{}

func (Unknown) Kind() Kind      { return KindUnknown }
func (Weekend) Kind() Kind      { return KindWeekend }
func (BeforeSchool) Kind() Kind { return KindBeforeSchool }
func (InLecture) Kind() Kind    { return KindInLecture }
func (FreeTime) Kind() Kind     { return KindFreeTime }
func (AfterSchool) Kind() Kind  { return KindAfterSchool }

func (Unknown) isPhase()      {}
func (Weekend) isPhase()      {}
func (BeforeSchool) isPhase() {}
func (InLecture) isPhase()    {}
func (FreeTime) isPhase()     {}
func (AfterSchool) isPhase()  {}

// NextLecture returns the upcoming lecture of a FreeTime gap.
func (f FreeTime) NextLecture() (model.Lecture, bool) {
	return f.Next.Lecture, f.HasNext
}

// normalize maps a nil Phase to Unknown.
func normalize(p Phase) Phase {
	if p == nil {
		return Unknown{}
	}
	return p
}

// Equal reports structural equality: same variant and same field values,
// including lecture indices.
func Equal(a, b Phase) bool {
	return normalize(a) == normalize(b)
}

// IsUnknown reports whether p is the initial sentinel (or nil).
func IsUnknown(p Phase) bool {
	return normalize(p).Kind() == KindUnknown
}
