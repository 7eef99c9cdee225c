package board

import (
	"slices"
	"time"

	"timertable/internal/model"
	"timertable/internal/phase"
)

// RowStep is the height of one grid row.
const RowStep = 5 * time.Minute

// otherDayFade dims the columns of days other than today.
const otherDayFade = 0.8

// Row is one RowStep line of the time axis. Label is empty unless some
// lecture of the week begins or ends exactly on Time.
type Row struct {
	Time  model.TimeOfDay `json:"time"`
	Label string          `json:"label"`
}

// Cell is a lecture block in a day column, spanning [Row, Row+Span) rows.
type Cell struct {
	Index      int             `json:"index"`
	Subject    string          `json:"subject"`
	Begin      model.TimeOfDay `json:"begin"`
	End        model.TimeOfDay `json:"end"`
	Row        int             `json:"row"`
	Span       int             `json:"span"`
	Background string          `json:"background"`
	Foreground string          `json:"foreground"`
	Highlight  bool            `json:"highlight"`
}

type Column struct {
	Weekday int    `json:"weekday"`
	Name    string `json:"name"`
	Today   bool   `json:"today"`
	Cells   []Cell `json:"cells"`
}

// Grid is the week timetable laid out for display.
type Grid struct {
	Rows    []Row    `json:"rows"`
	Columns []Column `json:"columns"`
}

// Highlighted returns today's lecture indices that should be emphasised
// for p: the running lecture, or both neighbours of a break. Nothing is
// highlighted on weekends.
func Highlighted(weekday int, p phase.Phase) []int {
	if !model.IsSchoolDay(weekday) {
		return nil
	}
	switch v := p.(type) {
	case phase.InLecture:
		return []int{v.Index}
	case phase.FreeTime:
		return []int{v.Prev.Index, v.Prev.Index + 1}
	default:
		return nil
	}
}

// BuildGrid lays out week for the instant classified as p on weekday.
func BuildGrid(week model.WeekTimetable, theme model.Theme, weekday int, p phase.Phase) Grid {
	minT, maxT, ok := week.Bounds()
	if !ok {
		return Grid{}
	}

	boundaries := map[model.TimeOfDay]bool{}
	for _, day := range week {
		for _, l := range day {
			boundaries[l.Begin] = true
			boundaries[l.End] = true
		}
	}

	var g Grid
	for t := minT; t <= maxT; t = t.Add(RowStep) {
		r := Row{Time: t}
		if boundaries[t] {
			r.Label = t.String()
		}
		g.Rows = append(g.Rows, r)
	}

	highlight := Highlighted(weekday, p)
	for d, day := range week {
		col := Column{Weekday: d, Name: WeekdayName(d), Today: d == weekday}
		for i, l := range day {
			colors := theme.Lookup(l.Subject)
			if !col.Today {
				colors.Background = colors.Background.Fade(otherDayFade)
				colors.Foreground = colors.Foreground.Fade(otherDayFade)
			}
			row := rowAtOrAfter(minT, l.Begin)
			col.Cells = append(col.Cells, Cell{
				Index:      i,
				Subject:    l.Subject,
				Begin:      l.Begin,
				End:        l.End,
				Row:        row,
				Span:       max(1, rowAtOrAfter(minT, l.End)-row),
				Background: colors.Background.Hex(),
				Foreground: colors.Foreground.Hex(),
				Highlight:  col.Today && slices.Contains(highlight, i),
			})
		}
		g.Columns = append(g.Columns, col)
	}
	return g
}

// rowAtOrAfter is the index of the first row whose time is not before t.
func rowAtOrAfter(origin, t model.TimeOfDay) int {
	step := int(RowStep / time.Second)
	return (int(t-origin) + step - 1) / step
}
