// Package board holds the live state of the classroom display. A Board is
// ticked once per second; each tick reclassifies the clock against the
// timetable, rings the bell on a phase change and publishes a Snapshot for
// the presentation layer.
package board

import (
	"sync"
	"time"

	appLog "timertable/internal/log"
	"timertable/internal/model"
	"timertable/internal/phase"
)

// Notifier is told about every phase transition. Ring must not block.
type Notifier interface {
	Ring() bool
}

// PhaseView is the JSON form of a phase.Phase.
type PhaseView struct {
	Kind              phase.Kind       `json:"kind"`
	Index             *int             `json:"index,omitempty"`
	Lecture           *model.Lecture   `json:"lecture,omitempty"`
	Prev              *model.Lecture   `json:"prev,omitempty"`
	Next              *model.Lecture   `json:"next,omitempty"`
	FirstLectureBegin *model.TimeOfDay `json:"first_lecture_begin,omitempty"`
}

// ViewOf converts p for the wire.
func ViewOf(p phase.Phase) PhaseView {
	if p == nil {
		p = phase.Unknown{}
	}
	v := PhaseView{Kind: p.Kind()}
	switch p := p.(type) {
	case phase.BeforeSchool:
		v.FirstLectureBegin = &p.FirstLectureBegin
	case phase.InLecture:
		v.Index, v.Lecture = &p.Index, &p.Lecture
	case phase.FreeTime:
		v.Prev = &p.Prev.Lecture
		if p.HasNext {
			v.Next = &p.Next.Lecture
		}
	}
	return v
}

// ProgressView is the JSON form of a phase.Progress.
type ProgressView struct {
	RemainingSeconds int `json:"remaining_seconds"`
	TotalSeconds     int `json:"total_seconds"`
}

// Snapshot is everything the display shows for one tick.
type Snapshot struct {
	Now          time.Time     `json:"now"`
	Weekday      int           `json:"weekday"`
	Phase        phase.Phase   `json:"-"`
	View         PhaseView     `json:"phase"`
	Transitioned bool          `json:"transitioned"`
	Status       string        `json:"status"`
	Progress     *ProgressView `json:"progress,omitempty"`
	ProgressText string        `json:"progress_text"`
	Fraction     float64       `json:"fraction"`
	Grid         Grid          `json:"grid"`
}

// Render builds the snapshot of now, already classified as p. appStart
// anchors the before-school countdown.
func Render(now time.Time, p phase.Phase, appStart time.Time, week model.WeekTimetable, theme model.Theme) Snapshot {
	weekday := model.DayOfWeek(now)
	s := Snapshot{
		Now:      now,
		Weekday:  weekday,
		Phase:    p,
		View:     ViewOf(p),
		Status:   Status(now, p),
		Fraction: 1,
		Grid:     BuildGrid(week, theme, weekday, p),
	}
	if pr, ok := phase.Compute(p, now, appStart); ok {
		s.Progress = &ProgressView{
			RemainingSeconds: int(pr.Remaining / time.Second),
			TotalSeconds:     int(pr.Total / time.Second),
		}
		s.ProgressText = ProgressText(pr)
		s.Fraction = pr.Fraction()
	}
	return s
}

// Options configures a Board.
type Options struct {
	// Location is the classroom timezone. Defaults to time.Local.
	Location *time.Location
	// AppStart anchors the before-school countdown. Defaults to now.
	AppStart time.Time
	// Notifier rings on transitions. Nil disables it.
	Notifier Notifier
}

// Board is safe for concurrent use: the scheduler ticks it while HTTP
// handlers read snapshots.
type Board struct {
	week     model.WeekTimetable
	theme    model.Theme
	loc      *time.Location
	appStart time.Time
	notifier Notifier

	mu       sync.RWMutex
	previous phase.Phase
	snapshot Snapshot
	// anchor is the countdown start of the current BeforeSchool occurrence.
	anchor time.Time
}

// New returns a Board in the Unknown phase. The first Tick never rings.
func New(week model.WeekTimetable, theme model.Theme, opts Options) *Board {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.AppStart.IsZero() {
		opts.AppStart = time.Now()
	}
	b := &Board{
		week:     week,
		theme:    theme,
		loc:      opts.Location,
		appStart: opts.AppStart.In(opts.Location),
		notifier: opts.Notifier,
		previous: phase.Unknown{},
	}
	b.snapshot = Render(b.appStart, phase.Unknown{}, b.appStart, week, theme)
	return b
}

// Tick classifies now, updates the published snapshot and rings the
// notifier when the phase changed since the previous tick.
func (b *Board) Tick(now time.Time) Snapshot {
	now = now.In(b.loc)

	b.mu.Lock()
	p, changed := phase.Classify(now, b.week, b.previous)
	b.previous = p
	s := Render(now, p, b.anchorFor(now, p, changed), b.week, b.theme)
	s.Transitioned = changed
	b.snapshot = s
	b.mu.Unlock()

	if changed {
		appLog.Info("phase changed", "phase", string(p.Kind()), "at", model.Of(now).String())
		if b.notifier != nil {
			b.notifier.Ring()
		}
	}
	return s
}

// anchorFor returns the start of the before-school countdown at now. The
// process start serves while its time of day is not later than now. When
// the board has run since an earlier day, the first tick of the occurrence
// becomes the anchor instead. Caller holds b.mu.
func (b *Board) anchorFor(now time.Time, p phase.Phase, changed bool) time.Time {
	if _, ok := p.(phase.BeforeSchool); !ok {
		b.anchor = time.Time{}
		return b.appStart
	}
	if changed || b.anchor.IsZero() {
		b.anchor = b.appStart
		if model.Of(b.appStart) > model.Of(now) {
			b.anchor = now
		}
	}
	return b.anchor
}

// Snapshot returns the latest published snapshot.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapshot
}

// Phase returns the phase of the latest tick.
func (b *Board) Phase() phase.Phase {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.previous
}

func (b *Board) Week() model.WeekTimetable { return b.week }
func (b *Board) Theme() model.Theme        { return b.theme }
func (b *Board) Location() *time.Location  { return b.loc }
